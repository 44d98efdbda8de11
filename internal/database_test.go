package internal

import (
	"path/filepath"
	"testing"

	"github.com/iksnae/lawchat/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				tmpDir := testutil.CreateTempDir(t)
				dbPath := filepath.Join(tmpDir, "test.db")
				testutil.CreateSQLiteFixture(t, dbPath)
				return dbPath
			},
			wantErr: false,
		},
		{
			name: "new database in new directory",
			setup: func(t *testing.T) string {
				tmpDir := testutil.CreateTempDir(t)
				return filepath.Join(tmpDir, "a", "b", "lawchat.db")
			},
			wantErr: false,
		},
		{
			name: "in memory",
			setup: func(t *testing.T) string {
				return ":memory:"
			},
			wantErr: false,
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T) string {
				tmpDir := testutil.CreateTempDir(t)
				blocker := filepath.Join(tmpDir, "blocker")
				testutil.CreateFileFixture(t, blocker, []byte("x"))
				return filepath.Join(blocker, "lawchat.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.setup(t)
			db, err := OpenDatabase(dbPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if db == nil {
					t.Error("OpenDatabase() returned nil database")
					return
				}
				defer db.Close()
				// schema must exist
				if _, err := QueryKV(db, ""); err != nil {
					t.Errorf("QueryKV() on fresh database error = %v", err)
				}
			}
		})
	}
}

func TestQueryKV(t *testing.T) {
	db := testutil.CreateTestDB(t)

	tests := []struct {
		name   string
		prefix string
		want   int // expected number of results
	}{
		{
			name:   "all rows",
			prefix: "",
			want:   4,
		},
		{
			name:   "session collections",
			prefix: SessionsKeyPrefix,
			want:   2,
		},
		{
			name:   "one identity's pointer",
			prefix: ActiveKey("alice"),
			want:   1,
		},
		{
			name:   "no match",
			prefix: "nonexistent",
			want:   0,
		},
		{
			name:   "wildcard is literal",
			prefix: "sessions@%",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := QueryKV(db, tt.prefix)
			if err != nil {
				t.Fatalf("QueryKV() error = %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("QueryKV() returned %d results, want %d", len(results), tt.want)
			}
		})
	}
}

func TestQueryKV_Sorted(t *testing.T) {
	db := testutil.CreateTestDB(t)

	results, err := QueryKV(db, "")
	if err != nil {
		t.Fatalf("QueryKV() error = %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Key > results[i].Key {
			t.Errorf("QueryKV() not sorted: %q before %q", results[i-1].Key, results[i].Key)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a_b", `a\_b`},
		{"100%", `100\%`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
