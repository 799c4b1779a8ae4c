// Package fingerprint guesses an operating system or firmware family from
// banner and header text using a small regex pattern table.
package fingerprint

import "regexp"

type osPattern struct {
	name    string
	pattern *regexp.Regexp
}

// osPatterns is checked in order; the first match wins. Ordered from most
// to least specific so e.g. "Ubuntu" wins over the generic "Linux" rule.
var osPatterns = []osPattern{
	{"Windows", regexp.MustCompile(`(?i)windows`)},
	{"Ubuntu", regexp.MustCompile(`(?i)ubuntu`)},
	{"Debian", regexp.MustCompile(`(?i)debian`)},
	{"Fedora", regexp.MustCompile(`(?i)fedora`)},
	{"CentOS", regexp.MustCompile(`(?i)centos`)},
	{"RHEL", regexp.MustCompile(`(?i)red\s*hat|rhel`)},
	{"macOS", regexp.MustCompile(`(?i)mac\s*os|darwin`)},
	{"FreeBSD", regexp.MustCompile(`(?i)freebsd`)},
	{"OpenWrt", regexp.MustCompile(`(?i)openwrt`)},
	{"DD-WRT", regexp.MustCompile(`(?i)dd-wrt`)},
	{"Tomato", regexp.MustCompile(`(?i)tomato`)},
	{"VxWorks", regexp.MustCompile(`(?i)vxworks`)},
	{"Busybox", regexp.MustCompile(`(?i)busybox`)},
	{"Android", regexp.MustCompile(`(?i)android`)},
	{"iOS", regexp.MustCompile(`(?i)\bios\b`)},
	{"Tizen", regexp.MustCompile(`(?i)tizen`)},
	{"RTOS", regexp.MustCompile(`(?i)\brtos\b|freertos`)},
	{"Linux", regexp.MustCompile(`(?i)linux`)},
}

// Guess returns the name of the first OS/firmware pattern matching any of
// the given text fragments, or "" if nothing matched. Callers typically
// pass SERVER headers, banners, and UPnP/WSD metadata strings together.
func Guess(texts ...string) string {
	for _, pat := range osPatterns {
		for _, t := range texts {
			if t == "" {
				continue
			}
			if pat.pattern.MatchString(t) {
				return pat.name
			}
		}
	}
	return ""
}
