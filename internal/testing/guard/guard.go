package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("FLORA_TEST_MODE") == "" {
			_ = os.Setenv("FLORA_TEST_MODE", "1")
		}
	})
}
