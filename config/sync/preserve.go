package sync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// VerifyPreserved checks that every top-level field of original except the
// managed ones survives unchanged in updated. CCR keeps its own settings
// (LOG, HOST, APIKEY, transformers, ...) next to Providers and Router, and
// ccs must never touch them.
func VerifyPreserved(original, updated []byte, managed ...string) error {
	if !gjson.ValidBytes(original) {
		return fmt.Errorf("original JSON is invalid")
	}
	if !gjson.ValidBytes(updated) {
		return fmt.Errorf("updated JSON is invalid")
	}

	skip := make(map[string]bool, len(managed))
	for _, key := range managed {
		skip[key] = true
	}

	after := gjson.ParseBytes(updated)
	var differences []string
	gjson.ParseBytes(original).ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if skip[name] {
			return true
		}
		now := after.Get(gjson.Escape(name))
		switch {
		case !now.Exists():
			differences = append(differences, name+" (missing)")
		case string(pretty.Ugly([]byte(value.Raw))) != string(pretty.Ugly([]byte(now.Raw))):
			differences = append(differences, name)
		}
		return true
	})

	if len(differences) > 0 {
		sort.Strings(differences)
		return fmt.Errorf("unexpected changes to unmanaged fields: %s", strings.Join(differences, ", "))
	}
	return nil
}
