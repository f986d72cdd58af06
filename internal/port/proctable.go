package port

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tcpListenState is the hex state code for LISTEN in /proc/net/tcp.
const tcpListenState = "0A"

// ProcTableResolver resolves port owners on Linux by reading the
// kernel connection tables: the listening socket's inode comes from
// /proc/net/tcp, and the owning process is found by searching each
// process's fd table for a link to that inode.
type ProcTableResolver struct {
	// Root is the proc mount point, normally "/proc". Overridable so
	// tests can point it at a fixture tree.
	Root string
}

// Resolve finds the process listening on port, or a zero Owner if no
// process could be matched.
func (r *ProcTableResolver) Resolve(_ context.Context, port int) (Owner, error) {
	inode, err := r.findInode(port)
	if err != nil {
		return Owner{}, err
	}
	if inode == "" {
		return Owner{}, nil
	}
	return r.findOwner(inode), nil
}

// findInode scans the tcp and tcp6 tables for a LISTEN socket bound to
// port and returns its inode, or "" if none is bound.
func (r *ProcTableResolver) findInode(port int) (string, error) {
	portHex := fmt.Sprintf("%04X", port)

	for _, table := range []string{"tcp", "tcp6"} {
		path := filepath.Join(r.Root, "net", table)
		inode, err := scanTable(path, portHex)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		if inode != "" {
			return inode, nil
		}
	}
	return "", nil
}

// scanTable parses one /proc/net/tcp-format file. Each data line has
// the local address as "IPHEX:PORTHEX" in column 1, the state code in
// column 3, and the socket inode in column 9.
func scanTable(path, portHex string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Scan() // skip header

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 10 {
			continue
		}
		if fields[3] != tcpListenState {
			continue
		}

		local := fields[1]
		idx := strings.LastIndex(local, ":")
		if idx == -1 || local[idx+1:] != portHex {
			continue
		}
		return fields[9], nil
	}
	return "", sc.Err()
}

// findOwner walks per-process fd tables looking for a descriptor that
// links to socket:[inode], then reads the owner's comm name. Processes
// we cannot inspect (typically other users') are skipped.
func (r *ProcTableResolver) findOwner(inode string) Owner {
	target := fmt.Sprintf("socket:[%s]", inode)

	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return Owner{}
	}

	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join(r.Root, entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if link != target {
				continue
			}

			owner := Owner{PID: pid}
			comm, err := os.ReadFile(filepath.Join(r.Root, entry.Name(), "comm"))
			if err == nil {
				owner.Name = strings.TrimSpace(string(comm))
			}
			return owner
		}
	}
	return Owner{}
}
