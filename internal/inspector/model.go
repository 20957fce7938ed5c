// Package inspector is the Bubble Tea model for respkv-inspect, a read-only
// browser that polls a running respd over an ordinary client connection.
package inspector

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/respkv/internal/respclient"
)

const refreshInterval = 2 * time.Second

// Model is the Bubble Tea model for respkv-inspect.
type Model struct {
	addr   string
	client *respclient.Client

	dbsize int
	keys   []string
	cursor int

	selectedKey   string
	selectedValue string
	selectedMiss  bool

	width, height int
	err           error
}

type connectedMsg struct{ client *respclient.Client }
type errMsg struct{ err error }
type refreshMsg struct {
	dbsize int
	keys   []string
}
type valueMsg struct {
	key  string
	val  string
	miss bool
}
type tickMsg struct{}

// New creates a Model that will connect to addr.
func New(addr string) Model {
	return Model{addr: addr}
}

// Init dials the server.
func (m Model) Init() tea.Cmd {
	return connect(m.addr)
}

func connect(addr string) tea.Cmd {
	return func() tea.Msg {
		c, err := respclient.Dial(addr)
		if err != nil {
			return errMsg{err: err}
		}
		return connectedMsg{client: c}
	}
}

func refresh(c *respclient.Client) tea.Cmd {
	return func() tea.Msg {
		sizeReply, err := c.Do("DBSIZE")
		if err != nil {
			return errMsg{err: err}
		}
		size, _ := sizeReply.Int()

		keysReply, err := c.Do("KEYS", "*")
		if err != nil {
			return errMsg{err: err}
		}
		elems, _ := keysReply.Elements()
		keys := make([]string, 0, len(elems))
		for _, el := range elems {
			if s, ok := el.Str(); ok {
				keys = append(keys, s)
			}
		}
		sort.Strings(keys)

		return refreshMsg{dbsize: int(size), keys: keys}
	}
}

func fetchValue(c *respclient.Client, key string) tea.Cmd {
	return func() tea.Msg {
		reply, err := c.Do("GET", key)
		if err != nil {
			return errMsg{err: err}
		}
		if reply.IsNull() {
			return valueMsg{key: key, miss: true}
		}
		val, _ := reply.Str()
		return valueMsg{key: key, val: val}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		m.client = msg.client
		return m, tea.Batch(refresh(m.client), tick())

	case tickMsg:
		if m.client == nil {
			return m, nil
		}
		return m, tea.Batch(refresh(m.client), tick())

	case refreshMsg:
		m.dbsize = msg.dbsize
		m.keys = msg.keys
		if m.cursor >= len(m.keys) {
			m.cursor = max(len(m.keys)-1, 0)
		}
		return m, nil

	case valueMsg:
		m.selectedKey = msg.key
		m.selectedValue = msg.val
		m.selectedMiss = msg.miss
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.client != nil {
			_ = m.client.Close()
		}
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "enter":
		if m.cursor >= 0 && m.cursor < len(m.keys) && m.client != nil {
			return m, fetchValue(m.client, m.keys[m.cursor])
		}
		return m, nil
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.err != nil {
		return fmt.Sprintf("error: %v\n\nq: quit", m.err)
	}
	if m.client == nil {
		return "connecting..."
	}
	return m.render()
}
