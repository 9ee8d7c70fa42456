package billing_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// fakeAPI API remota en memoria que registra las escrituras recibidas.
type fakeAPI struct {
	mu       sync.Mutex
	invoices map[int64]*entity.Invoice
	nextID   int64

	getCalls  atomic.Int32
	listCalls atomic.Int32
	updates   []entity.InvoiceDraft
	creates   []entity.InvoiceDraft
	deleted   []int64

	customers []entity.Customer
	products  []entity.Product
	err       error
}

func newFakeAPI(invs ...entity.Invoice) *fakeAPI {
	f := &fakeAPI{invoices: map[int64]*entity.Invoice{}, nextID: 100}
	for i := range invs {
		inv := invs[i]
		f.invoices[inv.ID] = &inv
	}
	return f
}

func (f *fakeAPI) ListInvoices(_ context.Context, page, perPage int) (*entity.InvoicePage, error) {
	f.listCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &entity.InvoicePage{Pagination: entity.Pagination{Page: page, PerPage: perPage, TotalPages: 1, TotalEntries: len(f.invoices)}}
	for _, inv := range f.invoices {
		out.Invoices = append(out.Invoices, *inv)
	}
	return out, nil
}

func (f *fakeAPI) GetInvoice(_ context.Context, id int64) (*entity.Invoice, error) {
	f.getCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	cp.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
	return &cp, nil
}

func (f *fakeAPI) CreateInvoice(_ context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, draft)
	f.nextID++
	inv := &entity.Invoice{ID: f.nextID, CustomerID: draft.CustomerID, Date: draft.Date, Deadline: draft.Deadline}
	for _, p := range draft.LinesAttributes {
		inv.Lines = append(inv.Lines, entity.InvoiceLine{
			ID: f.nextID*10 + int64(len(inv.Lines)), InvoiceID: f.nextID, ProductID: p.ProductID,
			Label: p.Label, Quantity: p.Quantity, Price: p.Price, Tax: p.Tax,
		})
	}
	f.invoices[inv.ID] = inv
	return inv, nil
}

func (f *fakeAPI) UpdateInvoice(_ context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, draft)
	inv, ok := f.invoices[draft.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	inv.CustomerID = draft.CustomerID
	inv.Date, inv.Deadline = draft.Date, draft.Deadline
	inv.Paid, inv.Finalized = draft.Paid, draft.Finalized
	return inv, nil
}

func (f *fakeAPI) DeleteInvoice(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.invoices, id)
	return nil
}

func (f *fakeAPI) SearchCustomers(_ context.Context, query string, _ int) ([]entity.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Customer
	for _, c := range f.customers {
		if strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAPI) SearchProducts(_ context.Context, query string, _ int) ([]entity.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Label), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// mapCache caché en memoria sin expiración que guarda JSON, como los drivers reales.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
