package orderutil

import (
	"regexp"
	"strings"
)

var (
	trailingHouseNumber = regexp.MustCompile(`^(.+?)\s*(\d+\S*(?:\s?[A-Za-z]{1,3})?)$`)
	leadingHouseNumber  = regexp.MustCompile(`^(\d+\S*)\s+(.+)$`)
	spaces              = regexp.MustCompile(`\s+`)
)

// ParseStreet splits a free-text street into street name and house number.
// "Kraanspoor 39C" gives ("Kraanspoor", "39C"); "221B Baker Street" gives
// ("Baker Street", "221B"). Streets without a number are returned whole.
func ParseStreet(street, additional string) (name, houseNumber string) {
	full := strings.TrimSpace(spaces.ReplaceAllString(street+" "+additional, " "))
	full = strings.ReplaceAll(full, " - ", "-")
	if full == "" {
		return "", ""
	}
	if m := trailingHouseNumber.FindStringSubmatch(full); m != nil {
		return strings.TrimRight(m[1], " ,"), m[2]
	}
	if m := leadingHouseNumber.FindStringSubmatch(full); m != nil {
		return m[2], strings.TrimRight(m[1], ",")
	}
	return full, ""
}
