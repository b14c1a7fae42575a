// Package demo is a small grocery list application used by the CLI and
// the inspector. Each Tick mutates the list and re-renders it, through a
// scheduler batch for the list and a root render for the summary.
package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vango-dev/reconcile/pkg/async"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
)

// Item is one entry of the list.
type Item struct {
	ID    int
	Title string
	Done  bool
}

var groceries = []string{"milk", "eggs", "bread", "apples", "coffee", "rice", "butter", "tea"}

// App holds the list state and the components rendering it.
type App struct {
	Registry *render.Registry

	// LoadDelay simulates fetching the lazy summary component.
	LoadDelay time.Duration

	mu    sync.Mutex
	items []Item
	next  int
	ticks int

	// host of the list, set on the container loop.
	listHost dom.Element

	list, card, summary, clock *ComponentRef
}

// NewApp returns an app seeded with three items.
func NewApp() *App {
	a := &App{Registry: render.NewRegistry(), LoadDelay: 10 * time.Millisecond}
	for i := 0; i < 3; i++ {
		a.add()
	}
	a.list = a.Registry.Register("todo-list", a.renderList)
	a.card = a.Registry.Register("card", renderCard)
	a.card.StyleID = "card"
	a.card.HostTag = "article"
	a.clock = a.Registry.Register("clock", renderClock)
	a.clock.HostTag = "span"
	a.summary = a.Registry.RegisterLazy("summary", func() (render.RenderFn, error) {
		time.Sleep(a.LoadDelay)
		return renderSummary, nil
	})
	return a
}

func (a *App) add() {
	a.items = append(a.items, Item{ID: a.next, Title: groceries[a.next%len(groceries)]})
	a.next++
}

// Items returns a copy of the list.
func (a *App) Items() []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Item(nil), a.items...)
}

// View returns the root tree.
func (a *App) View() *Node {
	items := a.Items()
	done := 0
	for _, it := range items {
		if it.Done {
			done++
		}
	}
	a.mu.Lock()
	ticks := a.ticks
	a.mu.Unlock()

	return Div(ID("app"),
		Component(a.card, HostAttr("class", "wide"),
			H1(SlotName("title"), "Groceries"),
			Component(a.list),
		),
		Component(a.summary,
			Attr{Key: "total", Value: len(items)},
			Attr{Key: "done", Value: done},
		),
		Component(a.clock, Attr{Key: "tick", Value: ticks}),
	)
}

// Step applies the next mutation: add, toggle, rotate or remove, by turn.
func (a *App) Step() {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.ticks % 4 {
	case 0:
		a.add()
	case 1:
		if len(a.items) > 0 {
			i := a.ticks % len(a.items)
			a.items[i].Done = !a.items[i].Done
		}
	case 2:
		if len(a.items) > 1 {
			a.items = append(a.items[1:], a.items[0])
		}
	case 3:
		if len(a.items) > 4 {
			a.items = a.items[1:]
		}
	}
	a.ticks++
}

// Tick steps the state, re-renders the list host through the scheduler,
// then renders the root so the summary follows.
func (a *App) Tick(ctx context.Context, c *render.Container) ([]*render.RenderContext, error) {
	a.Step()

	var (
		batch *async.Promise[*render.RenderContext]
		err   error
	)
	if derr := c.Do(ctx, func() {
		if a.listHost != nil {
			batch, err = c.NotifyRender(a.listHost)
		}
	}); derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, err
	}

	var out []*render.RenderContext
	if batch != nil {
		rc, err := batch.Await(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	rc, err := c.Render(ctx, a.View()).Await(ctx)
	if err != nil {
		return out, err
	}
	return append(out, rc), nil
}

func (a *App) renderList(s *render.Scope, props Props) (*Node, error) {
	a.listHost = s.Host()
	items := a.Items()
	if len(items) == 0 {
		return P(Class("empty"), "Nothing to buy"), nil
	}
	lis := make([]any, 0, len(items)+1)
	lis = append(lis, Class("todos"))
	for _, it := range items {
		lis = append(lis, Li(Key(it.ID),
			Classes(map[string]bool{"done": it.Done}),
			it.Title))
	}
	return Ul(lis...), nil
}

func renderCard(s *render.Scope, props Props) (*Node, error) {
	return Host(Role("region"),
		Header(H2(Slot("title", "Untitled"))),
		Section(Slot("")),
	), nil
}

func renderSummary(s *render.Scope, props Props) (*Node, error) {
	total, _ := props["total"].(int)
	done, _ := props["done"].(int)
	return P(Class("summary"), Textf("%d of %d done", done, total)), nil
}

// renderClock resolves its output on a goroutine, the way a component
// waiting on I/O would.
func renderClock(s *render.Scope, props Props) (*Node, error) {
	tick, _ := props["tick"].(int)
	return Await(async.Go(func() (*Node, error) {
		return Text(fmt.Sprintf("tick %d", tick)), nil
	})), nil
}
