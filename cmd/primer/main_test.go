package main

import (
	"testing"

	"github.com/Hakuto4838/skipset/skiplist/basic"
)

func TestRun(t *testing.T) {
	for _, h := range []int{1, 4, basic.DefaultMaxHeight} {
		sl, err := basic.New[int](basic.WithMaxHeight(h))
		if err != nil {
			t.Fatal(err)
		}
		if err := run(sl, false); err != nil {
			t.Errorf("maxHeight %d: %v", h, err)
		}
	}
}

func TestRunRejectsReuse(t *testing.T) {
	sl, err := basic.New[int]()
	if err != nil {
		t.Fatal(err)
	}
	if err := run(sl, false); err != nil {
		t.Fatal(err)
	}
	// 第二次插入相同 key 應該失敗
	if err := run(sl, false); err == nil {
		t.Error("second run: err = nil")
	}
}
