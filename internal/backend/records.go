package backend

import "context"

// RecordStore answers role lookups against the backend tables:
// users by primary key and team_members by their user_id column.
type RecordStore struct {
	client *Client
}

// NewRecordStore creates a RecordStore over client.
func NewRecordStore(client *Client) *RecordStore {
	return &RecordStore{client: client}
}

// ManagerExists reports whether a users row with id = userID exists.
func (s *RecordStore) ManagerExists(ctx context.Context, userID string) (bool, error) {
	return s.client.Exists(ctx, "users", "id", userID)
}

// TeamMemberExists reports whether a team_members row links userID.
func (s *RecordStore) TeamMemberExists(ctx context.Context, userID string) (bool, error) {
	return s.client.Exists(ctx, "team_members", "user_id", userID)
}

// Health checks the underlying client.
func (s *RecordStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}
