// Package scanner walks a workspace filesystem for Elm modules.
package scanner

import (
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("elmls.scanner")

// Scan walks the subtree under root inside fsys. Any file or directory
// whose name begins with "." is skipped entirely, as is every file not
// ending in ".elm". For each remaining file, skip is applied, and if it
// returns false the file is read and callback(relPath, contents) invoked.
// Paths are slash separated and relative to the filesystem root.
// Scan only returns once all callbacks have completed.
func Scan(
	fsys billy.Filesystem,
	root string,
	skip func(relPath string, info fs.FileInfo) bool,
	callback func(relPath string, document []byte),
) error {
	fileCh := make(chan string, 100)
	var wg sync.WaitGroup

	// worker goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range fileCh {
			data, err := util.ReadFile(fsys, p)
			if err != nil {
				log.Warningf("read error %s: %s", p, err)
				continue
			}
			callback(p, data)
		}
	}()

	log.Debugf("starting walk at %q", root)
	err := util.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Warningf("walk error: %s", err)
			return nil
		}
		p = path.Clean(strings.ReplaceAll(p, "\\", "/"))

		if info.IsDir() {
			if p != root && ignoreDir(info.Name()) {
				log.Debugf("skipping %q", p)
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") || path.Ext(p) != ".elm" {
			return nil
		}
		if skip != nil && skip(p, info) {
			return nil
		}

		// enqueue for reading
		fileCh <- p
		return nil
	})

	// no more files to send
	close(fileCh)
	// wait for the worker to finish consuming and calling back
	wg.Wait()
	return err
}

func ignoreDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "elm-stuff"
}
