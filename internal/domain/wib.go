package domain

import (
	"sync"
	"time"
)

var (
	jakartaOnce sync.Once
	jakarta     *time.Location
)

// Jakarta returns the Asia/Jakarta zone, falling back to a fixed UTC+7 zone
// when the host has no tzdata.
func Jakarta() *time.Location {
	jakartaOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Jakarta")
		if err != nil {
			loc = time.FixedZone("WIB", 7*60*60)
		}
		jakarta = loc
	})
	return jakarta
}

// FormatWIB renders t as "HH:mm WIB".
func FormatWIB(t time.Time) string {
	return t.In(Jakarta()).Format("15:04") + " WIB"
}
