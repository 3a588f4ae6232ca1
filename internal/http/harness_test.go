package http

import (
	"context"
	"sync"
	"testing"

	"github.com/example/routine-bot/internal/application"
	"github.com/example/routine-bot/internal/testfixtures"
)

// fakeChat records outgoing chat calls in order.
type fakeChat struct {
	mu sync.Mutex

	nextTS  string
	postErr error

	messages  []postedMessage
	replies   []threadReply
	reactions []reaction
	pins      []string
	views     []openedView
}

type postedMessage struct {
	channel string
	text    string
}

type threadReply struct {
	channel  string
	threadID string
	text     string
}

type reaction struct {
	channel string
	ts      string
	name    string
}

type openedView struct {
	triggerID string
	view      any
}

func newFakeChat() *fakeChat {
	return &fakeChat{nextTS: "1000.0001"}
}

func (f *fakeChat) PostMessage(ctx context.Context, channel, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return "", f.postErr
	}
	f.messages = append(f.messages, postedMessage{channel: channel, text: text})
	return f.nextTS, nil
}

func (f *fakeChat) PostInThread(ctx context.Context, channel, threadID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, threadReply{channel: channel, threadID: threadID, text: text})
	return nil
}

func (f *fakeChat) AddReaction(ctx context.Context, channel, ts, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, reaction{channel: channel, ts: ts, name: name})
	return nil
}

func (f *fakeChat) PinMessage(ctx context.Context, channel, ts string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pins = append(f.pins, ts)
	return nil
}

func (f *fakeChat) OpenView(ctx context.Context, triggerID string, view any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = append(f.views, openedView{triggerID: triggerID, view: view})
	return nil
}

func (f *fakeChat) lastReply(t *testing.T) threadReply {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		t.Fatal("no thread replies recorded")
	}
	return f.replies[len(f.replies)-1]
}

// transportHarness wires both operating modes over one in-memory store.
type transportHarness struct {
	store      *testfixtures.MemoryStore
	clock      *testfixtures.Clock
	chat       *fakeChat
	catalog    *application.CatalogService
	directory  *application.DirectoryService
	rotation   *application.RotationService
	remote     *application.RemoteService
	production Engine
	debug      Engine
}

const testChannel = "C0TESTCHAN"

func newTransportHarness(t *testing.T) *transportHarness {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	cal := testfixtures.RigaCalendar()

	catalogSvc := application.NewCatalogService(store, nil)
	directory := application.NewDirectoryService(store, store, store, cal, nil)
	rotation := application.NewRotationService(store, directory, cal, clock.NowFunc(), nil)
	remote := application.NewRemoteService(store, directory, cal, nil)

	engines := make(map[application.Mode]Engine, 2)
	for _, mode := range []application.Mode{application.ModeProduction, application.ModeDebug} {
		ledger := application.NewLedgerService(mode, store, catalogSvc, cal, nil)
		schedule := application.NewScheduleService(mode, catalogSvc, directory, rotation, ledger, remote, cal, application.ScheduleOptions{}, nil)
		engines[mode] = Engine{Ledger: ledger, Schedule: schedule}
	}

	return &transportHarness{
		store:      store,
		clock:      clock,
		chat:       newFakeChat(),
		catalog:    catalogSvc,
		directory:  directory,
		rotation:   rotation,
		remote:     remote,
		production: engines[application.ModeProduction],
		debug:      engines[application.ModeDebug],
	}
}

func (h *transportHarness) eventHandler(t *testing.T) *EventHandler {
	t.Helper()
	return NewEventHandler(h.production, h.debug, h.catalog, h.chat, testfixtures.RigaCalendar(), testChannel, h.clock.NowFunc(), nil)
}

func (h *transportHarness) commandHandler(t *testing.T) *CommandHandler {
	t.Helper()
	return NewCommandHandler(h.rotation, h.remote, h.directory, h.production.Ledger, h.chat, testfixtures.RigaCalendar(), testChannel, h.clock.NowFunc(), nil)
}

func (h *transportHarness) interactionHandler(t *testing.T) *InteractionHandler {
	t.Helper()
	return NewInteractionHandler(h.production, h.debug, h.catalog, h.chat, testfixtures.RigaCalendar(), testChannel, h.clock.NowFunc(), nil)
}
