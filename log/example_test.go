package log_test

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/j2env/log"
)

func ExampleMake() {
	logger := log.Make(os.Stderr,
		log.WithLevel(log.LevelDebug),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("RFC3339Nano"),
	)

	logger.Debug("resolved variable", slog.String("name", "DB_HOST"), slog.String("tag", "consul:"))
}

func ExampleRepeat() {
	r := log.NewRepeat(os.Stdout)

	for range 16 {
		_, _ = r.WriteString("rendering: app.conf.j2 => success\n")
	}

	_, _ = r.WriteString("running: systemctl reload app => success\n")

	// Output:
	// rendering: app.conf.j2 => success
	// (5x) rendering: app.conf.j2 => success
	// (10x) rendering: app.conf.j2 => success
	// running: systemctl reload app => success
}

func ExampleLevels() {
	for name := range log.Levels() {
		fmt.Println(name)
	}

	// Output:
	// trace
	// debug
	// info
	// warn
	// error
}
