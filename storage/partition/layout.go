package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

const (
	orgDirPrefix   = "org_id="
	yearDirPrefix  = "fiscal_year="
	themeDirPrefix = "theme="
	segmentPrefix  = "part-"
	segmentExt     = ".seg"
)

// partitionDir returns the directory for a partition key under root.
func partitionDir(root string, key core.PartitionKey) string {
	return filepath.Join(root,
		orgDirPrefix+key.OrgID,
		yearDirPrefix+strconv.Itoa(key.FiscalYear),
		themeDirPrefix+key.Theme)
}

// segmentName builds a part file name from a microsecond timestamp.
func segmentName(micros int64) string {
	return fmt.Sprintf("%s%d%s", segmentPrefix, micros, segmentExt)
}

// listPartitions walks the three-level partition hierarchy under root and
// returns the keys passing the filter, sorted. A missing root or a filter
// matching nothing yields an empty slice, not an error.
func listPartitions(root string, filter storage.Filter) ([]core.PartitionKey, error) {
	orgs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []core.PartitionKey
	for _, org := range orgs {
		if !org.IsDir() || !strings.HasPrefix(org.Name(), orgDirPrefix) {
			continue
		}
		orgID := strings.TrimPrefix(org.Name(), orgDirPrefix)
		if filter.OrgID != "" && filter.OrgID != orgID {
			continue
		}

		years, err := os.ReadDir(filepath.Join(root, org.Name()))
		if err != nil {
			return nil, err
		}
		for _, year := range years {
			if !year.IsDir() || !strings.HasPrefix(year.Name(), yearDirPrefix) {
				continue
			}
			fy, err := strconv.Atoi(strings.TrimPrefix(year.Name(), yearDirPrefix))
			if err != nil {
				continue
			}
			if filter.FiscalYear != 0 && filter.FiscalYear != fy {
				continue
			}

			themes, err := os.ReadDir(filepath.Join(root, org.Name(), year.Name()))
			if err != nil {
				return nil, err
			}
			for _, theme := range themes {
				if !theme.IsDir() || !strings.HasPrefix(theme.Name(), themeDirPrefix) {
					continue
				}
				code := strings.TrimPrefix(theme.Name(), themeDirPrefix)
				if filter.Theme != "" && filter.Theme != code {
					continue
				}
				keys = append(keys, core.PartitionKey{OrgID: orgID, FiscalYear: fy, Theme: code})
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OrgID != keys[j].OrgID {
			return keys[i].OrgID < keys[j].OrgID
		}
		if keys[i].FiscalYear != keys[j].FiscalYear {
			return keys[i].FiscalYear < keys[j].FiscalYear
		}
		return keys[i].Theme < keys[j].Theme
	})
	return keys, nil
}

// listSegments returns the part files of a partition directory in sorted
// order. A missing directory yields an empty slice.
func listSegments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var segments []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, segmentPrefix) || !strings.HasSuffix(name, segmentExt) {
			continue
		}
		segments = append(segments, filepath.Join(dir, name))
	}
	sort.Strings(segments)
	return segments, nil
}
