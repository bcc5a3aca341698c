package posix

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/fuselage-sh/fuselage/platform"
)

// parsePasswd reads a colon-delimited /etc/passwd-format file. os/user does
// not expose full-database enumeration, so the debug-only
// `fuselage inspect --users` surface reads it directly.
func parsePasswd(path string) ([]platform.Passwd, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyPathError("read", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []platform.Passwd
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 {
			continue
		}
		uid, _ := strconv.Atoi(fields[2])
		gid, _ := strconv.Atoi(fields[3])
		out = append(out, platform.Passwd{
			Name:  fields[0],
			Uid:   uid,
			Gid:   gid,
			Gecos: fields[4],
			Home:  fields[5],
			Shell: fields[6],
		})
	}
	return out, scanner.Err()
}

// parseGroup reads a colon-delimited /etc/group-format file.
func parseGroup(path string) ([]platform.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyPathError("read", path, err)
	}
	defer func() { _ = f.Close() }()

	var out []platform.Group
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 4 {
			continue
		}
		gid, _ := strconv.Atoi(fields[2])
		var members []string
		if fields[3] != "" {
			members = strings.Split(fields[3], ",")
		}
		out = append(out, platform.Group{Name: fields[0], Gid: gid, Members: members})
	}
	return out, scanner.Err()
}
