package keyword

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed SmartStoplist.txt
var smartStopList string

// StopList is a set of lowercase stopwords.
type StopList map[string]struct{}

// Contains reports whether word is a stopword.
func (s StopList) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of stopwords.
func (s StopList) Len() int {
	return len(s)
}

// LoadStopList parses a stop list. Lines starting with # are comments;
// every other line may hold several whitespace-separated words.
func LoadStopList(r io.Reader) (StopList, error) {
	list := make(StopList)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, word := range strings.Fields(line) {
			list[strings.ToLower(word)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStopListRead, err)
	}
	return list, nil
}

// LoadStopListFile parses the stop list at path.
func LoadStopListFile(path string) (StopList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStopListRead, err)
	}
	defer f.Close()
	return LoadStopList(f)
}

var defaultStopList = sync.OnceValue(func() StopList {
	list, err := LoadStopList(strings.NewReader(smartStopList))
	if err != nil {
		panic(err)
	}
	return list
})

// DefaultStopList returns the SMART stop list. The result is shared and
// must not be modified.
func DefaultStopList() StopList {
	return defaultStopList()
}
