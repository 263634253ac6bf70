package engine

import "fmt"

// Namer hands out names for new units and cities. Namers are stateful,
// so cloning a game clones its namers.
type Namer interface {
	Name() string
	Clone() Namer
}

// IntNamer names sequentially with a prefix: "Unit 0", "Unit 1", ...
type IntNamer struct {
	prefix string
	next   int
}

func NewIntNamer(prefix string) *IntNamer {
	return &IntNamer{prefix: prefix}
}

func (n *IntNamer) Name() string {
	name := fmt.Sprintf("%s %d", n.prefix, n.next)
	n.next++
	return name
}

func (n *IntNamer) Clone() Namer {
	c := *n
	return &c
}

// ListNamer hands out names from a fixed list, numbering repeats once
// the list runs out.
type ListNamer struct {
	names []string
	next  int
}

func NewListNamer(names []string) *ListNamer {
	return &ListNamer{names: names}
}

func (n *ListNamer) Name() string {
	if len(n.names) == 0 {
		name := fmt.Sprintf("Settlement %d", n.next)
		n.next++
		return name
	}
	i := n.next % len(n.names)
	round := n.next / len(n.names)
	n.next++
	if round == 0 {
		return n.names[i]
	}
	return fmt.Sprintf("%s %d", n.names[i], round+1)
}

func (n *ListNamer) Clone() Namer {
	c := *n
	return &c
}
