// Command hygiene walks a working tree and reports files that match the
// repository's ignore rules but are present anyway. It backs a pre-commit
// hook: a non-zero exit means the tree carries files that should have
// been ignored.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taxdesk/taxdesk/pkg/ignore"
	"go.uber.org/zap"
)

func main() {
	var (
		root        = flag.String("root", ".", "directory to scan")
		rulesFile   = flag.String("rules", ".gitignore", "ignore rules file, relative to root")
		listOnly    = flag.Bool("list", false, "print offending paths and exit 0")
		includeDirs = flag.Bool("dirs", false, "report matching directories themselves, not just files")
	)
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer log.Sync()

	matcher, err := loadRules(filepath.Join(*root, *rulesFile))
	if err != nil {
		log.Fatal("load rules", zap.Error(err))
	}

	offenders, err := scan(*root, matcher, *includeDirs)
	if err != nil {
		log.Fatal("scan", zap.Error(err))
	}

	for _, path := range offenders {
		fmt.Println(path)
	}
	if len(offenders) > 0 && !*listOnly {
		log.Error("tree contains files that match the ignore rules",
			zap.Int("count", len(offenders)),
		)
		os.Exit(1)
	}
}

func loadRules(path string) (*ignore.Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ignore.Parse(f)
}

// scan collects ignored paths under root. Matching directories are
// reported once and not descended into.
func scan(root string, matcher *ignore.Matcher, includeDirs bool) ([]string, error) {
	var offenders []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		if !matcher.Match(filepath.ToSlash(rel), d.IsDir()) {
			return nil
		}
		if d.IsDir() {
			if includeDirs {
				offenders = append(offenders, rel+string(filepath.Separator))
				return filepath.SkipDir
			}
			// Report the contents, which is what the commit would add.
			walkErr := fs.WalkDir(os.DirFS(path), ".", func(sub string, sd fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if sub == "." || sd.IsDir() {
					return nil
				}
				offenders = append(offenders, filepath.Join(rel, sub))
				return nil
			})
			if walkErr != nil {
				return walkErr
			}
			return filepath.SkipDir
		}
		offenders = append(offenders, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offenders, nil
}
