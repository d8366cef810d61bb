package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/soft3d/trirast/pkg/frame"
)

// presentHalfBlocks draws target to the terminal using the classic
// upper-half-block trick: each terminal cell packs two framebuffer rows,
// the top row as the glyph's foreground color and the bottom row as its
// background color, written as raw truecolor ANSI escapes.
func presentHalfBlocks(target *frame.Target, termWidth, termHeight int) {
	var b strings.Builder
	b.WriteString("\x1b[H")

	for row := 0; row < termHeight; row++ {
		topY := row * 2
		botY := topY + 1
		if botY >= target.Height {
			break
		}
		for col := 0; col < termWidth && col < target.Width; col++ {
			top := target.Color[topY*target.Width+col]
			bot := target.Color[botY*target.Width+col]
			tr, tg, tbl := unpackRGB(top)
			br, bg, bb := unpackRGB(bot)
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", tr, tg, tbl, br, bg, bb)
		}
		b.WriteString("\x1b[0m\r\n")
	}

	os.Stdout.WriteString(b.String())
}

func unpackRGB(c frame.Color) (r, g, b byte) {
	return byte(c >> 16), byte(c >> 8), byte(c)
}
