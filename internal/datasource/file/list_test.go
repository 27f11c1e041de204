package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestReadList checks comment and blank-line handling for a studies file.
func TestReadList(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		content string
		want    []string
	}{
		"subset": {
			content: "# weekly run\nkissler2023\n\n  ke2022  # assay melt\n\t# off: hakki2022\nwaickman2024\n",
			want:    []string{"kissler2023", "ke2022", "waickman2024"},
		},
		"empty":         {content: "", want: nil},
		"only comments": {content: "# nothing\n   \n", want: nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p := filepath.Join(t.TempDir(), "studies.txt")
			if err := os.WriteFile(p, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := ReadList(p)
			if err != nil {
				t.Fatalf("ReadList: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ReadList (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadList_Missing(t *testing.T) {
	t.Parallel()
	if _, err := ReadList(filepath.Join(t.TempDir(), "studies.txt")); !os.IsNotExist(err) {
		t.Fatalf("err=%v; want not-exist", err)
	}
}
