package baseline

import (
	"math/rand"
	"testing"

	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/basic"
)

func TestBaselineInterface(t *testing.T) {
	var _ skiplist.Set[skiplist.K] = (*Huandu)(nil)
	var _ skiplist.Set[skiplist.K] = (*TreeSet)(nil)
}

// 所有實作對同一組操作必須回傳相同結果
func TestImplementationsAgree(t *testing.T) {
	ref, err := basic.New[skiplist.K](basic.WithSeed(3))
	if err != nil {
		t.Fatal(err)
	}
	impls := map[string]skiplist.Set[skiplist.K]{
		"huandu":  NewHuandu(),
		"treeset": NewTreeSet(),
	}

	r := rand.New(rand.NewSource(8))
	for i := 0; i < 5000; i++ {
		key := skiplist.K(r.Intn(300))
		op := r.Intn(3)
		var want bool
		switch op {
		case 0:
			want = ref.Insert(key)
		case 1:
			want = ref.Erase(key)
		default:
			want = ref.Contains(key)
		}
		for name, s := range impls {
			var got bool
			switch op {
			case 0:
				got = s.Insert(key)
			case 1:
				got = s.Erase(key)
			default:
				got = s.Contains(key)
			}
			if got != want {
				t.Fatalf("%s op %d (type %d, key %d) = %v, want %v", name, i, op, key, got, want)
			}
			if s.Size() != ref.Size() {
				t.Fatalf("%s size = %d, want %d", name, s.Size(), ref.Size())
			}
		}
	}

	for name, s := range impls {
		s.Clear()
		if !s.Empty() || s.Size() != 0 {
			t.Errorf("%s not empty after Clear", name)
		}
	}
}
