package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/neomorfeo/venuedir/internal/adapter/fsm"
	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/domain"
)

// --- Fakes ---

var errStore = errors.New("store unavailable")

// faults injects an error into the named fake operation.
type faults map[string]error

func (f faults) hit(op string) error { return f[op] }

type fakeWorkers struct {
	rows map[string]domain.Worker
	fail faults
}

func newFakeWorkers() *fakeWorkers {
	return &fakeWorkers{rows: make(map[string]domain.Worker), fail: faults{}}
}

func (f *fakeWorkers) Create(_ context.Context, w domain.Worker) error {
	if err := f.fail.hit("create"); err != nil {
		return err
	}
	f.rows[w.ID] = w
	return nil
}

func (f *fakeWorkers) GetByID(_ context.Context, id string) (domain.Worker, error) {
	w, ok := f.rows[id]
	if !ok {
		return domain.Worker{}, domain.ErrWorkerNotFound
	}
	return w, nil
}

func (f *fakeWorkers) List(_ context.Context, filter domain.WorkerFilter) ([]domain.Worker, error) {
	out := make([]domain.Worker, 0, len(f.rows))
	for _, w := range f.rows {
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWorkers) Update(_ context.Context, w domain.Worker) error {
	if err := f.fail.hit("update"); err != nil {
		return err
	}
	if _, ok := f.rows[w.ID]; !ok {
		return domain.ErrWorkerNotFound
	}
	f.rows[w.ID] = w
	return nil
}

func (f *fakeWorkers) Delete(_ context.Context, id string) error {
	if err := f.fail.hit("delete"); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

type fakeVenues struct {
	rows map[string]domain.Venue
	fail faults
}

func newFakeVenues() *fakeVenues {
	return &fakeVenues{rows: make(map[string]domain.Venue), fail: faults{}}
}

func (f *fakeVenues) Create(_ context.Context, v domain.Venue) error {
	if err := f.fail.hit("create"); err != nil {
		return err
	}
	f.rows[v.ID] = v
	return nil
}

func (f *fakeVenues) GetByID(_ context.Context, id string) (domain.Venue, error) {
	v, ok := f.rows[id]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return v, nil
}

func (f *fakeVenues) List(_ context.Context, _ domain.VenueFilter) ([]domain.Venue, error) {
	out := make([]domain.Venue, 0, len(f.rows))
	for _, v := range f.rows {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVenues) Update(_ context.Context, v domain.Venue) error {
	if err := f.fail.hit("update"); err != nil {
		return err
	}
	f.rows[v.ID] = v
	return nil
}

func (f *fakeVenues) Delete(_ context.Context, id string) error {
	if err := f.fail.hit("delete"); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

type fakeAssocs struct {
	rows []domain.Association
	fail faults
	// failInsertAt makes the n-th Insert call fail (1-based, 0 disables).
	failInsertAt int
	inserts      int
}

func newFakeAssocs() *fakeAssocs {
	return &fakeAssocs{fail: faults{}}
}

func (f *fakeAssocs) Insert(_ context.Context, a domain.Association) error {
	f.inserts++
	if f.failInsertAt > 0 && f.inserts == f.failInsertAt {
		return errStore
	}
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeAssocs) ListByWorker(_ context.Context, workerID string) ([]domain.Association, error) {
	var out []domain.Association
	for _, a := range f.rows {
		if a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssocs) ListCurrentByWorker(_ context.Context, workerID string) ([]domain.Association, error) {
	var out []domain.Association
	for _, a := range f.rows {
		if a.WorkerID == workerID && a.IsCurrent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssocs) ListCurrentByVenue(_ context.Context, venueID string) ([]domain.Association, error) {
	var out []domain.Association
	for _, a := range f.rows {
		if a.VenueID == venueID && a.IsCurrent {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssocs) End(_ context.Context, id string, at time.Time) error {
	if err := f.fail.hit("end"); err != nil {
		return err
	}
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].IsCurrent {
			f.rows[i].IsCurrent = false
			f.rows[i].EndDate = &at
		}
	}
	return nil
}

func (f *fakeAssocs) EndCurrent(_ context.Context, workerID string, at time.Time) ([]domain.Association, error) {
	if err := f.fail.hit("end_current"); err != nil {
		return nil, err
	}
	var ended []domain.Association
	for i := range f.rows {
		if f.rows[i].WorkerID == workerID && f.rows[i].IsCurrent {
			ended = append(ended, f.rows[i])
			f.rows[i].IsCurrent = false
			f.rows[i].EndDate = &at
		}
	}
	return ended, nil
}

func (f *fakeAssocs) Reopen(_ context.Context, id string) error {
	if err := f.fail.hit("reopen"); err != nil {
		return err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].IsCurrent = true
			f.rows[i].EndDate = nil
		}
	}
	return nil
}

func (f *fakeAssocs) Delete(_ context.Context, id string) error {
	if err := f.fail.hit("delete"); err != nil {
		return err
	}
	kept := f.rows[:0]
	for _, a := range f.rows {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	f.rows = kept
	return nil
}

// current returns the venue ids of the worker's current rows.
func (f *fakeAssocs) current(workerID string) []string {
	var ids []string
	for _, a := range f.rows {
		if a.WorkerID == workerID && a.IsCurrent {
			ids = append(ids, a.VenueID)
		}
	}
	return ids
}

func (f *fakeAssocs) seed(workerID, venueID string) domain.Association {
	a := domain.NewAssociation("assoc-"+workerID+"-"+venueID, workerID, venueID, "seed", "")
	f.rows = append(f.rows, a)
	return a
}

type fakeProposals struct {
	rows  map[string]domain.Proposal
	order []string
	fail  faults
}

func newFakeProposals() *fakeProposals {
	return &fakeProposals{rows: make(map[string]domain.Proposal), fail: faults{}}
}

func (f *fakeProposals) Create(_ context.Context, p domain.Proposal) error {
	if err := f.fail.hit("create"); err != nil {
		return err
	}
	f.rows[p.ID] = p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeProposals) GetByID(_ context.Context, id string) (domain.Proposal, error) {
	p, ok := f.rows[id]
	if !ok {
		return domain.Proposal{}, domain.ErrProposalNotFound
	}
	return p, nil
}

func (f *fakeProposals) List(_ context.Context, filter domain.ProposalFilter) ([]domain.Proposal, error) {
	var out []domain.Proposal
	for _, id := range f.order {
		p := f.rows[id]
		switch {
		case filter.Status != nil && p.Status != *filter.Status,
			filter.Kind != nil && p.Kind != *filter.Kind,
			filter.ItemType != nil && p.ItemType != *filter.ItemType,
			filter.ItemID != "" && p.ItemID != filter.ItemID,
			filter.ProposedBy != "" && p.ProposedBy != filter.ProposedBy:
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProposals) Review(_ context.Context, p domain.Proposal) error {
	if err := f.fail.hit("review"); err != nil {
		return err
	}
	stored, ok := f.rows[p.ID]
	if !ok {
		return domain.ErrProposalNotFound
	}
	if stored.Status != domain.ReviewPending {
		return domain.ErrAlreadyReviewed
	}
	f.rows[p.ID] = p
	return nil
}

// byKind returns every stored proposal of the given kind for an item.
func (f *fakeProposals) byKind(kind domain.ProposalKind, itemID string) []domain.Proposal {
	var out []domain.Proposal
	for _, id := range f.order {
		if p := f.rows[id]; p.Kind == kind && p.ItemID == itemID {
			out = append(out, p)
		}
	}
	return out
}

type fakeQueue struct {
	rows  map[string]domain.QueueEntry
	order []string
	fail  faults
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{rows: make(map[string]domain.QueueEntry), fail: faults{}}
}

func (f *fakeQueue) Enqueue(_ context.Context, e domain.QueueEntry) error {
	if err := f.fail.hit("enqueue"); err != nil {
		return err
	}
	f.rows[e.ID] = e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeQueue) GetByID(_ context.Context, id string) (domain.QueueEntry, error) {
	e, ok := f.rows[id]
	if !ok {
		return domain.QueueEntry{}, domain.ErrQueueEntryNotFound
	}
	return e, nil
}

func (f *fakeQueue) List(_ context.Context, status *domain.ReviewStatus) ([]domain.QueueEntry, error) {
	var out []domain.QueueEntry
	for _, id := range f.order {
		e := f.rows[id]
		if status != nil && e.Status != *status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeQueue) Resolve(_ context.Context, e domain.QueueEntry) error {
	if err := f.fail.hit("resolve"); err != nil {
		return err
	}
	stored, ok := f.rows[e.ID]
	if !ok {
		return domain.ErrQueueEntryNotFound
	}
	if stored.Status != domain.ReviewPending {
		return domain.ErrAlreadyReviewed
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeQueue) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

// forItem returns the entries of one item in insertion order.
func (f *fakeQueue) forItem(itemID string) []domain.QueueEntry {
	var out []domain.QueueEntry
	for _, id := range f.order {
		if e, ok := f.rows[id]; ok && e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out
}

type fakeAccess struct {
	grants map[string]domain.VenuePermissions
}

func newFakeAccess() *fakeAccess {
	return &fakeAccess{grants: make(map[string]domain.VenuePermissions)}
}

func (f *fakeAccess) VenuePermissions(_ context.Context, actorID, venueID string) (domain.VenuePermissions, bool, error) {
	p, ok := f.grants[venueID+"/"+actorID]
	return p, ok, nil
}

func (f *fakeAccess) GrantVenue(_ context.Context, venueID, userID string, perms domain.VenuePermissions) error {
	f.grants[venueID+"/"+userID] = perms
	return nil
}

type fakeNotifier struct {
	sent []domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) kinds() []domain.NotificationKind {
	out := make([]domain.NotificationKind, len(f.sent))
	for i, n := range f.sent {
		out[i] = n.Kind
	}
	return out
}

type fakePoints struct {
	events []domain.PointsEvent
	err    error
}

func (f *fakePoints) Record(_ context.Context, e domain.PointsEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

// --- Harness ---

var (
	admin     = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	moderator = domain.Actor{ID: "mod-1", Role: domain.RoleModerator}
	member    = domain.Actor{ID: "user-1", Role: domain.RoleUser}
	stranger  = domain.Actor{ID: "user-2", Role: domain.RoleUser}
)

type harness struct {
	workers   *fakeWorkers
	venues    *fakeVenues
	assocs    *fakeAssocs
	proposals *fakeProposals
	queue     *fakeQueue
	access    *fakeAccess
	notifier  *fakeNotifier
	points    *fakePoints
	svc       *app.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		workers:   newFakeWorkers(),
		venues:    newFakeVenues(),
		assocs:    newFakeAssocs(),
		proposals: newFakeProposals(),
		queue:     newFakeQueue(),
		access:    newFakeAccess(),
		notifier:  &fakeNotifier{},
		points:    &fakePoints{},
	}
	h.svc = app.NewService(app.Deps{
		Workers:      h.workers,
		Venues:       h.venues,
		Associations: h.assocs,
		Proposals:    h.proposals,
		Queue:        h.queue,
		Access:       h.access,
		Lifecycle:    fsm.NewLifecycle(),
		Review:       fsm.NewReview(),
		Notifier:     h.notifier,
		Points:       h.points,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}

func (h *harness) addVenue(id string, category domain.Category) domain.Venue {
	v := domain.NewVenue(id, "Venue "+id, category, "seed")
	v.Status = domain.StatusApproved
	h.venues.rows[id] = v
	return v
}

func (h *harness) addWorker(id, ownerID string, freelance bool) domain.Worker {
	w := domain.NewWorker(id, "Worker "+id, ownerID, ownerID)
	w.IsFreelance = freelance
	w.Status = domain.StatusApproved
	h.workers.rows[id] = w
	return w
}

func ptr[T any](v T) *T { return &v }
