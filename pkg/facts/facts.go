// Package facts gathers system information from remote hosts.
package facts

import (
	"context"
	"strings"

	"github.com/remsh/remsh/internal/remote"
)

// Gather collects system facts from the remote host over an established
// session.
func Gather(ctx context.Context, sess remote.Session) (map[string]any, error) {
	facts := make(map[string]any)

	// Gather OS information
	osInfo, err := gatherOSInfo(ctx, sess)
	if err == nil {
		for k, v := range osInfo {
			facts[k] = v
		}
	}

	// Gather hostname
	if hostname, err := gatherHostname(ctx, sess); err == nil {
		facts["hostname"] = hostname
	}

	// Gather user info
	if user, err := gatherUser(ctx, sess); err == nil {
		facts["user"] = user
	}

	// Gather home directory
	if home, err := gatherHome(ctx, sess); err == nil {
		facts["home"] = home
	}

	return facts, nil
}

// gatherOSInfo gathers operating system information.
func gatherOSInfo(ctx context.Context, sess remote.Session) (map[string]any, error) {
	info := make(map[string]any)

	// Try to detect OS type
	result, err := sess.Execute(ctx, "uname -s")
	if err != nil {
		return info, err
	}

	osType := strings.TrimSpace(result.Stdout)
	info["os_type"] = osType

	switch osType {
	case "Darwin":
		info["os_family"] = "Darwin"

		// Get macOS version
		if result, err := sess.Execute(ctx, "sw_vers -productVersion"); err == nil {
			info["os_version"] = strings.TrimSpace(result.Stdout)
		}

	case "Linux":
		info["os_family"] = "Linux"

		// Try to get distribution info from /etc/os-release
		if result, err := sess.Execute(ctx, "cat /etc/os-release 2>/dev/null"); err == nil && result.ExitStatus == 0 {
			osRelease := parseOSRelease(result.Stdout)
			if id, ok := osRelease["ID"]; ok {
				info["distribution"] = id
			}
			if version, ok := osRelease["VERSION_ID"]; ok {
				info["distribution_version"] = version
			}
			if name, ok := osRelease["PRETTY_NAME"]; ok {
				info["os_name"] = name
			}
		}
	}

	// Get architecture
	if result, err := sess.Execute(ctx, "uname -m"); err == nil {
		arch := strings.TrimSpace(result.Stdout)
		info["architecture"] = arch

		// Normalize architecture names
		switch arch {
		case "x86_64", "amd64":
			info["arch"] = "amd64"
		case "aarch64", "arm64":
			info["arch"] = "arm64"
		case "armv7l":
			info["arch"] = "arm"
		default:
			info["arch"] = arch
		}
	}

	// Get kernel version
	if result, err := sess.Execute(ctx, "uname -r"); err == nil {
		info["kernel"] = strings.TrimSpace(result.Stdout)
	}

	return info, nil
}

// parseOSRelease parses /etc/os-release format.
func parseOSRelease(content string) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			key := line[:idx]
			value := strings.Trim(line[idx+1:], "\"'")
			result[key] = value
		}
	}
	return result
}

// gatherHostname gets the system hostname.
func gatherHostname(ctx context.Context, sess remote.Session) (string, error) {
	result, err := sess.Execute(ctx, "hostname")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// gatherUser gets the current user.
func gatherUser(ctx context.Context, sess remote.Session) (string, error) {
	result, err := sess.Execute(ctx, "whoami")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// gatherHome gets the home directory.
func gatherHome(ctx context.Context, sess remote.Session) (string, error) {
	result, err := sess.Execute(ctx, "echo $HOME")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}
