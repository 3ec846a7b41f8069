package span

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type run struct {
	lo, hi float64
	key    int
}

func keyOf(r run) int { return r.key }

func grow(r, next run) run {
	r.hi = next.hi
	return r
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name string
		in   []run
		want []run
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "single",
			in:   []run{{0, 1, 7}},
			want: []run{{0, 1, 7}},
		},
		{
			name: "all equal",
			in:   []run{{0, 1, 7}, {1, 2, 7}, {2, 5, 7}},
			want: []run{{0, 5, 7}},
		},
		{
			name: "alternating",
			in:   []run{{0, 1, 1}, {1, 2, 2}, {2, 3, 1}},
			want: []run{{0, 1, 1}, {1, 2, 2}, {2, 3, 1}},
		},
		{
			name: "runs in the middle",
			in:   []run{{0, 1, 1}, {1, 2, 2}, {2, 3, 2}, {3, 4, 2}, {4, 6, 3}, {6, 7, 3}},
			want: []run{{0, 1, 1}, {1, 4, 2}, {4, 7, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coalesce(tt.in, keyOf, grow)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(run{})); diff != "" {
				t.Errorf("Coalesce() mismatch (-want +got):\n%s", diff)
			}
			if HasAdjacentDuplicates(got, keyOf) {
				t.Errorf("Coalesce() left adjacent duplicates: %v", got)
			}

			again := Coalesce(got, keyOf, grow)
			if diff := cmp.Diff(got, again, cmp.AllowUnexported(run{})); diff != "" {
				t.Errorf("Coalesce() is not idempotent (-first +second):\n%s", diff)
			}
		})
	}
}

func TestCoalesceDoesNotModifyInput(t *testing.T) {
	in := []run{{0, 1, 1}, {1, 2, 1}}
	_ = Coalesce(in, keyOf, grow)
	if in[0].hi != 1 {
		t.Errorf("input modified: %v", in)
	}
}
