package urlnorm

import "strings"

const defaultScheme = "https://"

// Normalize turns raw address-bar text into a navigable URL. Input that
// already carries an http or https scheme is returned unchanged; anything
// else gets https:// prepended. Hosts are not validated here: a malformed
// address is left for the render surface to fail on.
func Normalize(input string) string {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return input
	}
	return defaultScheme + input
}
