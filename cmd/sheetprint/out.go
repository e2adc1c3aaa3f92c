package main

import (
	"image"

	"badc0de.net/pkg/go-spritesheet/preview"
)

func out(img image.Image) {

	if *downsize {
		termSize, err := GetTermSize()
		if err == nil {
			if (termSize.WSXPixel != 0 && termSize.WSYPixel != 0) && (*rasterm || *iterm) {
				// Prefer printing out in native size if there's a chance we print out an image rather than pixels.
				//
				// Ideally this can only be decided when either rasterm or iterm renderers perform the print, but this hack might help anyway until the whole of the preview package is refactored.
				img = preview.Fit(img, termSize.WSXPixel/2, termSize.WSYPixel/2)
			} else {
				img = preview.Fit(img, termSize.WSRow/2, termSize.WSCol/2)
			}
		}
	}

	if *rasterm {
		preview.PrintRasTerm(img)
	} else if !*col {
		preview.PrintNoColor(img, *blanks)
	} else if *iterm {
		preview.PrintITerm(img, "sheet.png")
	} else if *col256 {
		preview.Print256Color(img, *blanks)
	} else {
		preview.Print24bit(img, *blanks)
	}
}
