package stage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

var macOSSDKInclude = regexp.MustCompile(`;/Applications/Xcode\.app/Contents/Developer/Platforms/MacOSX\.platform/Developer/SDKs/MacOSX\d+(\.\d+)*\.sdk/usr/include`)

// FixMacOSSDKPath strips the absolute Xcode SDK include directory from
// CMake content
func FixMacOSSDKPath(content string) string {
	return macOSSDKInclude.ReplaceAllString(content, "")
}

// FixMacOSSDKPaths rewrites every installed .cmake file that references the
// Xcode SDK and returns the rewritten paths
func FixMacOSSDKPaths(staging billy.Filesystem) ([]string, error) {
	var fixed []string

	err := util.Walk(staging, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(info.Name(), ".cmake") {
			return nil
		}

		data, err := util.ReadFile(staging, p)
		if err != nil {
			return err
		}

		content := FixMacOSSDKPath(string(data))
		if content == string(data) {
			return nil
		}

		fixed = append(fixed, filepath.ToSlash(p))

		return util.WriteFile(staging, p, []byte(content), info.Mode().Perm())
	})

	return fixed, err
}
