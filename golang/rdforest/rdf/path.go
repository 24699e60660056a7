package rdf

import "fmt"

//Path addresses a node of a complete binary tree by its depth and its offset inside the level.
//Bit k of Offset (counting from the least significant one) is the branch taken at depth Depth-k,
//1 for right and 0 for left.
type Path struct {
	Depth  int
	Offset int
}

//NewPath builds a path directly from a depth and an offset.
func NewPath(depth, offset int) Path {
	return Path{Depth: depth, Offset: offset}
}

//PathFromIndex decodes an index of the flat node array.
func PathFromIndex(idx int) Path {
	p := Path{}
	for v := idx + 1; v > 1; v >>= 1 {
		p.Depth++
	}
	p.Offset = idx - p.levelStart()
	return p
}

func (p Path) levelStart() int {
	return (1 << uint(p.Depth)) - 1
}

//Index returns the position of the node in the flat node array.
func (p Path) Index() int {
	return p.levelStart() + p.Offset
}

//Add descends one level, to the right child when right is true.
func (p *Path) Add(right bool) {
	p.Depth++
	p.Offset <<= 1
	if right {
		p.Offset++
	}
}

//IsBlacklisted reports whether the path passes through one of the pruned nodes.
//The blacklist is scanned linearly.
func (p Path) IsBlacklisted(blacklist []Path) bool {
	for _, b := range blacklist {
		if b.Depth > p.Depth {
			continue
		}
		if p.Offset>>uint(p.Depth-b.Depth) == b.Offset {
			return true
		}
	}
	return false
}

func (p Path) String() string {
	return fmt.Sprintf("Path(%d|%d)=%d", p.Offset, p.Depth, p.Index())
}
