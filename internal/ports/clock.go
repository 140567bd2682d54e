package ports

import "time"

// Clock abstracts the wall clock so elapsed-time logic can be tested.
type Clock interface {
	Now() time.Time
}
