package sheet_test

import (
	"fmt"

	"badc0de.net/pkg/go-spritesheet/sheet"
)

func ExampleConsistencyFromString() {
	c, err := sheet.ConsistencyFromString("all")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(c)
	// Output: all
}

func ExampleAlignFromString() {
	a, err := sheet.AlignFromString("bottom-center")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(a)
	// Output: bottom-center
}
