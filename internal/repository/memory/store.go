// Package memory provides in-process implementations of the board and account
// repositories. Transactions are serialized and roll back by restoring a snapshot.
// Writes outside a transaction wait for the running one to finish.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	locations    map[int64]model.Location
	nextLocation int64
	listings     map[uuid.UUID]model.Listing
	messages     map[uuid.UUID]model.Message
	visits       map[time.Time]int64
	users        map[uuid.UUID]model.User
	profiles     map[uuid.UUID]model.Profile
}

func New() *Store {
	return &Store{
		locations: make(map[int64]model.Location),
		listings:  make(map[uuid.UUID]model.Listing),
		messages:  make(map[uuid.UUID]model.Message),
		visits:    make(map[time.Time]int64),
		users:     make(map[uuid.UUID]model.User),
		profiles:  make(map[uuid.UUID]model.Profile),
	}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	locations    map[int64]model.Location
	nextLocation int64
	listings     map[uuid.UUID]model.Listing
	messages     map[uuid.UUID]model.Message
	visits       map[time.Time]int64
	users        map[uuid.UUID]model.User
	profiles     map[uuid.UUID]model.Profile
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		locations:    cloneMap(s.locations),
		nextLocation: s.nextLocation,
		listings:     cloneMap(s.listings),
		messages:     cloneMap(s.messages),
		visits:       cloneMap(s.visits),
		users:        cloneMap(s.users),
		profiles:     cloneMap(s.profiles),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = snap.locations
	s.nextLocation = snap.nextLocation
	s.listings = snap.listings
	s.messages = snap.messages
	s.visits = snap.visits
	s.users = snap.users
	s.profiles = snap.profiles
}

// lock takes the write lock. Outside a transaction it first waits for any
// running transaction, so a rollback never discards a concurrent write.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AddLocation registers a location and returns it with its assigned id.
func (s *Store) AddLocation(name, city string) model.Location {
	defer s.lock(context.Background())()
	s.nextLocation++
	loc := model.Location{ID: s.nextLocation, Name: name, City: city}
	s.locations[loc.ID] = loc
	return loc
}

func (s *Store) ListLocations(_ context.Context, city string) ([]model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		if city == "" || loc.City == city {
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetLocation(_ context.Context, id int64) (*model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[id]
	if !ok {
		return nil, apperr.ErrRecordNotFound
	}
	return &loc, nil
}

func (s *Store) CreateListing(ctx context.Context, listing *model.Listing) error {
	defer s.lock(ctx)()
	s.listings[listing.ID] = *listing
	return nil
}

func (s *Store) GetListing(_ context.Context, id uuid.UUID) (*model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	if !ok {
		return nil, apperr.ErrRecordNotFound
	}
	return &listing, nil
}

func (s *Store) UpdateListingContent(ctx context.Context, listing *model.Listing) error {
	defer s.lock(ctx)()
	current, ok := s.listings[listing.ID]
	if !ok {
		return apperr.ErrRecordNotFound
	}
	current.Title = listing.Title
	current.Description = listing.Description
	current.LocationID = listing.LocationID
	current.IsLocationSpecific = listing.IsLocationSpecific
	current.PhoneNumber = listing.PhoneNumber
	current.WhatsappNumber = listing.WhatsappNumber
	s.listings[listing.ID] = current
	return nil
}

func (s *Store) DeactivateListing(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()
	if listing, ok := s.listings[id]; ok {
		listing.IsActive = false
		s.listings[id] = listing
	}
	return nil
}

func (s *Store) DeleteListing(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()
	delete(s.listings, id)
	for msgID, msg := range s.messages {
		if msg.ListingID == id {
			delete(s.messages, msgID)
		}
	}
	return nil
}

func (s *Store) ListVisibleListings(_ context.Context, now time.Time, locationID *int64) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Listing{}
	for _, listing := range s.listings {
		if locationID != nil {
			if listing.VisibleInLocationAt(*locationID, now) {
				out = append(out, listing)
			}
		} else if listing.VisibleAt(now) {
			out = append(out, listing)
		}
	}
	sortListings(out)
	return out, nil
}

func (s *Store) ListListingsByAuthor(_ context.Context, authorID uuid.UUID) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Listing{}
	for _, listing := range s.listings {
		if listing.AuthorID == authorID {
			out = append(out, listing)
		}
	}
	sortListings(out)
	return out, nil
}

func (s *Store) DeactivateExpiredListings(ctx context.Context, now time.Time) (int64, error) {
	defer s.lock(ctx)()
	var n int64
	for id, listing := range s.listings {
		if listing.Expired(now) {
			listing.IsActive = false
			s.listings[id] = listing
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateMessage(ctx context.Context, message *model.Message) error {
	defer s.lock(ctx)()
	if _, ok := s.listings[message.ListingID]; !ok {
		return apperr.ErrRecordNotFound
	}
	s.messages[message.ID] = *message
	return nil
}

func (s *Store) GetMessage(_ context.Context, id uuid.UUID) (*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, apperr.ErrRecordNotFound
	}
	return &msg, nil
}

func (s *Store) ApproveMessage(ctx context.Context, id uuid.UUID, recipientPhone *string) (bool, error) {
	defer s.lock(ctx)()
	msg, ok := s.messages[id]
	if !ok || msg.IsApproved {
		return false, nil
	}
	msg.IsApproved = true
	msg.RecipientPhoneOnApproval = recipientPhone
	s.messages[id] = msg
	return true, nil
}

func (s *Store) DeleteMessagesByListing(ctx context.Context, listingID uuid.UUID) error {
	defer s.lock(ctx)()
	for id, msg := range s.messages {
		if msg.ListingID == listingID {
			delete(s.messages, id)
		}
	}
	return nil
}

func (s *Store) ListIncomingMessages(_ context.Context, recipientID uuid.UUID) ([]model.Message, error) {
	return s.filterMessages(func(m model.Message) bool { return m.RecipientID == recipientID }), nil
}

func (s *Store) ListOutgoingMessages(_ context.Context, senderID uuid.UUID) ([]model.Message, error) {
	return s.filterMessages(func(m model.Message) bool { return m.SenderID == senderID }), nil
}

func (s *Store) filterMessages(keep func(model.Message) bool) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Message{}
	for _, msg := range s.messages {
		if keep(msg) {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out
}

func (s *Store) IncrementVisit(ctx context.Context, date time.Time) error {
	defer s.lock(ctx)()
	s.visits[date]++
	return nil
}

func (s *Store) GetVisitCount(_ context.Context, date time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits[date], nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	defer s.lock(ctx)()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return apperr.Conflict("username or email already taken")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrRecordNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	s.mu.RLock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, login) {
			s.mu.RUnlock()
			return &u, nil
		}
	}
	s.mu.RUnlock()
	return s.GetUserByEmail(ctx, login)
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperr.ErrRecordNotFound
}

func (s *Store) UsernameTaken(_ context.Context, username string, except uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) EmailTaken(_ context.Context, email string, except uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateUserIdentity(ctx context.Context, id uuid.UUID, username, email string) error {
	defer s.lock(ctx)()
	u, ok := s.users[id]
	if !ok {
		return apperr.ErrRecordNotFound
	}
	u.Username = username
	u.Email = email
	s.users[id] = u
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	defer s.lock(ctx)()
	u, ok := s.users[id]
	if !ok {
		return apperr.ErrRecordNotFound
	}
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

// SetUserActive blocks or unblocks a user.
func (s *Store) SetUserActive(id uuid.UUID, active bool) {
	defer s.lock(context.Background())()
	if u, ok := s.users[id]; ok {
		u.IsActive = active
		s.users[id] = u
	}
}

func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperr.ErrRecordNotFound
	}
	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	defer s.lock(ctx)()
	s.profiles[profile.UserID] = *profile
	return nil
}

func sortListings(listings []model.Listing) {
	sort.Slice(listings, func(i, j int) bool { return listings[i].CreatedAt.After(listings[j].CreatedAt) })
}
