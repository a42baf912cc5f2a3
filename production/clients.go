package production

import (
	"context"
	"strconv"

	"github.com/warp/print-tracker/kv"
)

// =============================================================================
// CLIENT REPOSITORY
// =============================================================================
//
// Clients are never deleted. Deactivation is an UpdateClient with
// IsActive=false.

// ListClients returns every client in insertion order.
func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return loadClients(ctx, s.store)
}

// ActiveClients returns the clients offered for new jobs.
func (s *Service) ActiveClients(ctx context.Context) ([]Client, error) {
	all, err := loadClients(ctx, s.store)
	if err != nil {
		return nil, err
	}
	active := make([]Client, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// GetClient returns the client with id.
func (s *Service) GetClient(ctx context.Context, id int) (Client, error) {
	all, err := loadClients(ctx, s.store)
	if err != nil {
		return Client{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return Client{}, &NotFoundError{Kind: "client", Key: strconv.Itoa(id)}
}

// AddClient assigns the next client id and stores an active client.
func (s *Service) AddClient(ctx context.Context, in NewClient) (Client, error) {
	var created Client
	err := s.update(ctx, func(st kv.Store) error {
		clients, err := loadClients(ctx, st)
		if err != nil {
			return err
		}
		id, err := kv.NextID(ctx, st, CounterClient)
		if err != nil {
			return err
		}
		created = Client{
			ID:          id,
			Name:        in.Name,
			Phone:       in.Phone,
			BillingName: in.BillingName,
			IsActive:    true,
		}
		return kv.Set(ctx, st, KeyClients, append(clients, created))
	})
	if err != nil {
		return Client{}, err
	}
	return created, nil
}

// UpdateClient replaces the stored client with the same id.
func (s *Service) UpdateClient(ctx context.Context, c Client) (Client, error) {
	err := s.update(ctx, func(st kv.Store) error {
		clients, err := loadClients(ctx, st)
		if err != nil {
			return err
		}
		for i := range clients {
			if clients[i].ID == c.ID {
				clients[i] = c
				return kv.Set(ctx, st, KeyClients, clients)
			}
		}
		return &NotFoundError{Kind: "client", Key: strconv.Itoa(c.ID)}
	})
	if err != nil {
		return Client{}, err
	}
	return c, nil
}
