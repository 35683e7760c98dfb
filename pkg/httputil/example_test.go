package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/rigwall/pkg/httputil"
)

// Remote image sizes are cached under a namespace so repeated layouts skip
// the download.
func ExampleCache_Namespace() {
	dir, _ := os.MkdirTemp("", "rigwall-example")
	defer os.RemoveAll(dir)

	cache, _ := httputil.NewCache(dir, 24*time.Hour)
	sizes := cache.Namespace("imageprobe:")

	type size struct{ Width, Height int }
	src := "https://cdn.example.com/trucks/rotator-1150.jpg"
	_ = sizes.Set(src, size{1600, 1200})

	var got size
	ok, _ := sizes.Get(src, &got)
	fmt.Println(ok, got.Width, got.Height)

	ok, _ = cache.Get(src, &got)
	fmt.Println("visible without namespace:", ok)
	// Output:
	// true 1600 1200
	// visible without namespace: false
}

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return httputil.Retryable(errors.New("503 from image host"))
		}
		return nil
	})
	fmt.Println(calls, err)
	// Output:
	// 3 <nil>
}
