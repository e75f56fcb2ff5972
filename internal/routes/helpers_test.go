package routes

import (
	"os"
	"strconv"
)

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
