package tabstruct_test

import (
	"fmt"

	"github.com/tsawler/tabstruct"
	"github.com/tsawler/tabstruct/model"
	"github.com/tsawler/tabstruct/rowmerge"
	"github.com/tsawler/tabstruct/tables"
)

func Example_buildGrid() {
	r := func(l, t, rt, b float64) model.Rect { return model.Rect{Left: l, Top: t, Right: rt, Bottom: b} }
	primitives := []tables.Primitive{
		{Role: tables.RoleColumn, Bounds: r(0, 0, 50, 20)},
		{Role: tables.RoleColumn, Bounds: r(50, 0, 100, 20)},
		{Role: tables.RoleColumn, Bounds: r(100, 0, 150, 20)},
		{Role: tables.RoleRow, Bounds: r(0, 0, 150, 20)},
		{Role: tables.RoleSpanningCell, Bounds: r(0, 0, 100, 20)},
	}

	table := tabstruct.MustText(tabstruct.FromPrimitives("t1", primitives).Table())
	for _, c := range table.Rows[0].Cells {
		fmt.Println(c.Bounds, c.ColSpan)
	}
	// Output:
	// [0,0,100,20] 2
	// [100,0,150,20] 1
}

func Example_reconcile() {
	data := []byte(`{"name":"t1","rows":[` +
		`[{"content":"Alpha","colspan":1},{"content":"1","colspan":1}],` +
		`[{"content":"Beta continuation","colspan":1},{"content":"","colspan":1}]]}`)
	scores := []rowmerge.Score{
		{Row1: 0, Row2: 1, Column: 0, Value: 0.9},
		{Row1: 0, Row2: 1, Column: 1, Value: 0.8},
	}

	csv, warnings, err := tabstruct.FromJSON(data).Reconcile(scores).CSV()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, w := range warnings {
		fmt.Println("Warning:", w.Message)
	}
	fmt.Print(csv)
	// Output:
	// Alpha Beta continuation,1
}
