//go:build windows

package config

// HOME has no direct equivalent on Windows; save folders usually live
// under the user profile.
func mapEnvKey(key string) string {
	switch key {
	case "HOSTNAME":
		return "COMPUTERNAME"
	case "HOME":
		return "USERPROFILE"
	}
	return key
}
