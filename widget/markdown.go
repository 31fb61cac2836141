// Copyright (c) 2025, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package widget

import (
	"image/color"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	strip "github.com/grokify/html-strip-tags-go"
	"github.com/inkframe/inkframe/document"
	"github.com/inkframe/inkframe/events"
	"github.com/inkframe/inkframe/math32"
	"github.com/inkframe/inkframe/paint"
)

// HighlightStyle is the chroma style used for code blocks.
var HighlightStyle = "github"

// Markdown is a widget that renders markdown content.
// While interactive, it scrolls with [events.Scroll].
type Markdown struct {
	WidgetBase

	// Content is the markdown source.
	Content string

	parseOnce sync.Once
	blocks    []mdBlock

	scrollMu sync.Mutex
	scroll   float32
}

// NewMarkdown returns a new [Markdown] for the given resource.
func NewMarkdown(d document.Descriptor) *Markdown {
	md := &Markdown{Content: d.Content}
	md.Init(d.ID, document.Markdown)
	return md
}

type mdBlockKinds int

const (
	mdParagraph mdBlockKinds = iota
	mdHeading
	mdCode
	mdListItem
	mdRule
)

// mdBlock is one block of laid out markdown.
type mdBlock struct {
	kind  mdBlockKinds
	level int
	text  string

	// code is the highlighted lines of a code block.
	code [][]mdSpan
}

type mdSpan struct {
	text  string
	color color.Color
}

// parse returns the laid out blocks, parsing the content once.
func (md *Markdown) parse() []mdBlock {
	md.parseOnce.Do(func() {
		md.blocks = parseMarkdown(md.Content)
	})
	return md.blocks
}

func parseMarkdown(src string) []mdBlock {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse([]byte(src), p)

	var blocks []mdBlock
	var cur *strings.Builder
	var curBlock mdBlock
	start := func(b mdBlock) {
		curBlock = b
		cur = &strings.Builder{}
	}
	end := func() {
		if cur == nil {
			return
		}
		curBlock.text = strings.TrimSpace(strip.StripTags(cur.String()))
		if curBlock.text != "" {
			blocks = append(blocks, curBlock)
		}
		cur = nil
	}
	listDepth := 0
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Heading:
			if entering {
				start(mdBlock{kind: mdHeading, level: n.Level})
			} else {
				end()
			}
		case *ast.Paragraph:
			if entering {
				if cur == nil {
					kind := mdParagraph
					if listDepth > 0 {
						kind = mdListItem
					}
					start(mdBlock{kind: kind, level: listDepth})
				}
			} else {
				end()
			}
		case *ast.List:
			if entering {
				listDepth++
			} else {
				listDepth--
			}
		case *ast.CodeBlock:
			end()
			blocks = append(blocks, mdBlock{kind: mdCode, code: highlight(string(n.Info), string(n.Literal))})
		case *ast.HorizontalRule:
			end()
			blocks = append(blocks, mdBlock{kind: mdRule})
		case *ast.Text:
			if cur != nil {
				cur.Write(n.Literal)
			}
		case *ast.Code:
			if cur != nil {
				cur.Write(n.Literal)
			}
		case *ast.HTMLSpan:
			if cur != nil {
				cur.Write(n.Literal)
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if cur != nil && entering {
				cur.WriteString(" ")
			}
		}
		return ast.GoToNext
	})
	end()
	return blocks
}

// highlight splits code into lines of colored spans.
func highlight(lang, code string) [][]mdSpan {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(HighlightStyle)
	lines := [][]mdSpan{nil}
	it, err := lexer.Tokenise(nil, strings.TrimRight(code, "\n"))
	if err != nil {
		for _, ln := range strings.Split(code, "\n") {
			lines = append(lines, []mdSpan{{text: ln, color: color.Black}})
		}
		return lines[1:]
	}
	for _, tok := range it.Tokens() {
		clr := color.Color(color.Black)
		if e := style.Get(tok.Type); e.Colour.IsSet() {
			clr = color.RGBA{e.Colour.Red(), e.Colour.Green(), e.Colour.Blue(), 255}
		}
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], mdSpan{text: part, color: clr})
			}
		}
	}
	for len(lines) > 1 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Text returns the plain text of the rendered blocks, one per line.
func (md *Markdown) Text() string {
	var lines []string
	for _, b := range md.parse() {
		switch b.kind {
		case mdCode:
			for _, ln := range b.code {
				var sb strings.Builder
				for _, s := range ln {
					sb.WriteString(s.text)
				}
				lines = append(lines, sb.String())
			}
		case mdRule:
			lines = append(lines, "---")
		default:
			lines = append(lines, b.text)
		}
	}
	return strings.Join(lines, "\n")
}

var (
	mdTextColor = color.RGBA{0x1f, 0x23, 0x28, 0xff}
	mdCodeBg    = color.RGBA{0xf6, 0xf8, 0xfa, 0xff}
	mdRuleColor = color.RGBA{0xd0, 0xd7, 0xde, 0xff}
)

const mdPad = 12

func (md *Markdown) Render(pc *paint.Painter) {
	sz := md.LogicalSize()
	pc.FillBox(math32.Vector2{}, sz, color.White)
	width := sz.X - 2*mdPad
	md.scrollMu.Lock()
	y := float32(mdPad) - md.scroll
	md.scrollMu.Unlock()
	for _, b := range md.parse() {
		if y > sz.Y {
			break
		}
		switch b.kind {
		case mdHeading:
			ts := paint.TextStyle{Family: paint.Bold, Size: max(14, 28-4*float32(b.level)), Color: mdTextColor}
			y = md.drawWrapped(pc, b.text, mdPad, y, width, ts)
		case mdParagraph:
			y = md.drawWrapped(pc, b.text, mdPad, y, width, paint.TextStyle{Size: 14, Color: mdTextColor})
		case mdListItem:
			ts := paint.TextStyle{Size: 14, Color: mdTextColor}
			indent := float32(mdPad + 16*b.level)
			pc.DrawText("•", math32.Vec2(indent-10, y), ts)
			y = md.drawWrapped(pc, b.text, indent, y, width-(indent-mdPad), ts)
		case mdCode:
			ts := paint.TextStyle{Family: paint.Monospace, Size: 13}
			h := float32(len(b.code))*ts.LineHeight() + 8
			pc.FillBox(math32.Vec2(mdPad, y), math32.Vec2(width, h), mdCodeBg)
			ly := y + 4
			for _, ln := range b.code {
				x := float32(mdPad + 6)
				for _, s := range ln {
					ts.Color = s.color
					pc.DrawText(s.text, math32.Vec2(x, ly), ts)
					x += paint.MeasureText(s.text, ts)
				}
				ly += ts.LineHeight()
			}
			y += h + 8
		case mdRule:
			pc.FillBox(math32.Vec2(mdPad, y+4), math32.Vec2(width, 1), mdRuleColor)
			y += 12
		}
	}
}

func (md *Markdown) drawWrapped(pc *paint.Painter, text string, x, y, width float32, ts paint.TextStyle) float32 {
	for _, ln := range paint.WrapText(text, width, ts) {
		pc.DrawText(ln, math32.Vec2(x, y), ts)
		y += ts.LineHeight()
	}
	return y + ts.Size*0.5
}

// Scroll returns the vertical scroll offset of the content.
func (md *Markdown) Scroll() float32 {
	md.scrollMu.Lock()
	defer md.scrollMu.Unlock()
	return md.scroll
}

func (md *Markdown) HandleEvent(ev events.Event) {
	sev, ok := ev.(*events.MouseScroll)
	if !ok {
		return
	}
	md.scrollMu.Lock()
	md.scroll = max(0, md.scroll+sev.Delta.Y)
	md.scrollMu.Unlock()
	ev.SetHandled()
}
