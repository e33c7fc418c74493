package fingerprint

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"dfhash/internal/canonical"
	"dfhash/internal/failure"
	"dfhash/internal/table"
)

func TestSumKnownVector(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Fatalf("Sum(nil) = %s, want %s", got, empty)
	}
	got, err := Hash(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if got != empty {
		t.Fatalf("Hash(empty) = %s, want %s", got, empty)
	}
}

func TestHashMatchesSum(t *testing.T) {
	payload := []byte("a,b\nint64,int64\n1,2\n3,4\n")
	streamed, err := Hash(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if streamed != Sum(payload) {
		t.Fatalf("streamed digest %s differs from buffered %s", streamed, Sum(payload))
	}
	if !Valid(streamed) {
		t.Fatalf("expected %q to be a valid digest", streamed)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestHashWrapsReaderErrors(t *testing.T) {
	if _, err := Hash(failingReader{}); !errors.Is(err, failure.ErrHash) {
		t.Fatalf("expected ErrHash, got %v", err)
	}
}

func TestTableMatchesSerializedDigest(t *testing.T) {
	tbl := sampleTable(rand.New(rand.NewSource(1)), 200)
	sorted, err := canonical.Sort(context.Background(), tbl)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	serialized, err := canonical.Serialize(sorted)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Table(context.Background(), tbl)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if got != Sum(serialized) {
		t.Fatalf("streamed table digest %s differs from Sum(Serialize) %s", got, Sum(serialized))
	}
}

func TestTableIsOrderAndWorkerInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tbl := sampleTable(rng, 5000)
	want, err := Table(context.Background(), tbl, canonical.WithWorkers(1))
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	shuffled := tbl.WithRows(tbl.Rows)
	rng.Shuffle(len(shuffled.Rows), func(i, j int) { shuffled.Rows[i], shuffled.Rows[j] = shuffled.Rows[j], shuffled.Rows[i] })
	got, err := Table(context.Background(), shuffled, canonical.WithWorkers(8))
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if got != want {
		t.Fatalf("digest changed with order/workers: %s vs %s", got, want)
	}
}

func TestEqualityMatchesDigestEquality(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	base := sampleTable(rng, 40)
	variants := []*table.Table{
		base.WithRows(base.Rows),
		base.WithRows(base.Rows[1:]),
		base.WithRows(append(append([]table.Row(nil), base.Rows...), base.Rows[0])),
	}
	for i, other := range variants {
		eq, err := canonical.Equal(context.Background(), base, other)
		if err != nil {
			t.Fatalf("variant %d: Equal: %v", i, err)
		}
		a, _ := Table(context.Background(), base)
		b, _ := Table(context.Background(), other)
		if eq != (a == b) {
			t.Fatalf("variant %d: Equal=%v but digests equal=%v", i, eq, a == b)
		}
	}
}

func TestValid(t *testing.T) {
	tests := map[string]bool{
		strings.Repeat("a", 64): true,
		strings.Repeat("A", 64): false,
		strings.Repeat("a", 63): false,
		strings.Repeat("g", 64): false,
	}
	for digest, want := range tests {
		if got := Valid(digest); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", digest, got, want)
		}
	}
}

func sampleTable(rng *rand.Rand, n int) *table.Table {
	tbl := table.New(table.Schema{
		{Name: "id", Type: table.TypeInteger},
		{Name: "name", Type: table.TypeString},
		{Name: "ratio", Type: table.TypeFloat},
	})
	names := []string{"ann", "bob", "cy", ""}
	for i := 0; i < n; i++ {
		tbl.Append(table.Row{
			table.Int(int64(rng.Intn(100))),
			table.String(names[rng.Intn(len(names))]),
			table.Float(float64(rng.Intn(8)) / 4),
		})
	}
	return tbl
}
