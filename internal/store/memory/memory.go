// Package memory is a mutex-guarded, map-backed implementation of the
// store interfaces. It backs the service test suites so they run without
// a MySQL instance; WithinTx restores a snapshot on error, mirroring the
// rollback the SQL store gets from its transaction.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
)

type state struct {
	users      map[int64]models.User
	categories map[int64]models.Category
	products   map[int64]models.Product
	carts      map[int64]models.Cart
	cartItems  map[int64]models.CartItem
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem
	nextID     int64
}

func newState() *state {
	return &state{
		users:      make(map[int64]models.User),
		categories: make(map[int64]models.Category),
		products:   make(map[int64]models.Product),
		carts:      make(map[int64]models.Cart),
		cartItems:  make(map[int64]models.CartItem),
		orders:     make(map[int64]models.Order),
		orderItems: make(map[int64]models.OrderItem),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.nextID = st.nextID
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.carts {
		c.carts[k] = v
	}
	for k, v := range st.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.orderItems {
		c.orderItems[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

func New() *Store {
	return &Store{st: newState()}
}

// lock acquires the store mutex unless this Store is a transactional view,
// in which case the root already holds it.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID() int64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *Store) Users() store.UserStore          { return &userStore{s} }
func (s *Store) Categories() store.CategoryStore { return &categoryStore{s} }
func (s *Store) Products() store.ProductStore    { return &productStore{s} }
func (s *Store) Carts() store.CartStore          { return &cartStore{s} }
func (s *Store) Orders() store.OrderStore        { return &orderStore{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	_ = ctx
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &Store{st: s.st, inTx: true}
	if err := fn(tx); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// SeedProduct inserts a product (and its category, if absent) directly
// into the store. Test helper.
func (s *Store) SeedProduct(p models.Product) models.Product {
	defer s.lock()()
	if _, ok := s.st.categories[p.CategoryID]; !ok {
		s.st.categories[p.CategoryID] = models.Category{
			ID: p.CategoryID, Name: "seeded", Slug: "seeded",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
	}
	if p.ID == 0 {
		p.ID = s.nextID()
	} else if p.ID > s.st.nextID {
		s.st.nextID = p.ID
	}
	s.st.products[p.ID] = p
	return p
}

// --- users ---

type userStore struct{ s *Store }

func (u *userStore) Create(ctx context.Context, user *models.User) error {
	defer u.s.lock()()
	user.ID = u.s.nextID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	u.s.st.users[user.ID] = *user
	return nil
}

func (u *userStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	defer u.s.lock()()
	if user, ok := u.s.st.users[id]; ok {
		return &user, nil
	}
	return nil, store.ErrNotFound
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer u.s.lock()()
	for _, user := range u.s.st.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := u.GetByEmail(ctx, email)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

// --- categories ---

type categoryStore struct{ s *Store }

func (c *categoryStore) Create(ctx context.Context, cat *models.Category) error {
	defer c.s.lock()()
	cat.ID = c.s.nextID()
	now := time.Now()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	c.s.st.categories[cat.ID] = *cat
	return nil
}

func (c *categoryStore) Update(ctx context.Context, cat *models.Category) error {
	defer c.s.lock()()
	if _, ok := c.s.st.categories[cat.ID]; !ok {
		return store.ErrNotFound
	}
	cat.UpdatedAt = time.Now()
	c.s.st.categories[cat.ID] = *cat
	return nil
}

func (c *categoryStore) Delete(ctx context.Context, id int64) error {
	defer c.s.lock()()
	if _, ok := c.s.st.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.s.st.categories, id)
	return nil
}

func (c *categoryStore) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	defer c.s.lock()()
	if cat, ok := c.s.st.categories[id]; ok {
		return &cat, nil
	}
	return nil, store.ErrNotFound
}

func (c *categoryStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	defer c.s.lock()()
	for _, cat := range c.s.st.categories {
		if cat.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *categoryStore) List(ctx context.Context) ([]models.Category, error) {
	defer c.s.lock()()
	var cats []models.Category
	for _, cat := range c.s.st.categories {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

// --- products ---

type productStore struct{ s *Store }

func (p *productStore) Create(ctx context.Context, prod *models.Product) error {
	defer p.s.lock()()
	prod.ID = p.s.nextID()
	now := time.Now()
	prod.CreatedAt = now
	prod.UpdatedAt = now
	p.s.st.products[prod.ID] = *prod
	return nil
}

func (p *productStore) Delete(ctx context.Context, id int64) error {
	defer p.s.lock()()
	if _, ok := p.s.st.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(p.s.st.products, id)
	return nil
}

func (p *productStore) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	defer p.s.lock()()
	if prod, ok := p.s.st.products[id]; ok {
		if cat, ok := p.s.st.categories[prod.CategoryID]; ok {
			prod.CategoryName = cat.Name
		}
		return &prod, nil
	}
	return nil, store.ErrNotFound
}

func (p *productStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	return p.GetByID(ctx, id)
}

func (p *productStore) List(ctx context.Context, params models.ListProductsParams) ([]models.Product, int64, error) {
	defer p.s.lock()()
	var all []models.Product
	for _, prod := range p.s.st.products {
		if params.CategoryID > 0 && prod.CategoryID != params.CategoryID {
			continue
		}
		if cat, ok := p.s.st.categories[prod.CategoryID]; ok {
			prod.CategoryName = cat.Name
		}
		all = append(all, prod)
	}
	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch params.SortField {
		case "name":
			less = all[i].Name < all[j].Name
		case "price":
			less = all[i].Price < all[j].Price
		default:
			less = all[i].ID < all[j].ID
		}
		if params.SortDesc {
			return !less
		}
		return less
	})
	total := int64(len(all))
	start := params.Page * params.Size
	if start > len(all) {
		start = len(all)
	}
	end := start + params.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (p *productStore) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	defer p.s.lock()()
	var n int64
	for _, prod := range p.s.st.products {
		if prod.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (p *productStore) AdjustStock(ctx context.Context, id int64, delta int) error {
	defer p.s.lock()()
	prod, ok := p.s.st.products[id]
	if !ok {
		return store.ErrNotFound
	}
	prod.StockQty += delta
	prod.UpdatedAt = time.Now()
	p.s.st.products[id] = prod
	return nil
}

func (p *productStore) IsReferenced(ctx context.Context, id int64) (bool, error) {
	defer p.s.lock()()
	for _, item := range p.s.st.cartItems {
		if item.ProductID == id {
			return true, nil
		}
	}
	for _, item := range p.s.st.orderItems {
		if item.ProductID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- carts ---

type cartStore struct{ s *Store }

func (c *cartStore) Create(ctx context.Context, cart *models.Cart) error {
	defer c.s.lock()()
	cart.ID = c.s.nextID()
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	c.s.st.carts[cart.ID] = *cart
	return nil
}

func (c *cartStore) GetByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	defer c.s.lock()()
	for _, cart := range c.s.st.carts {
		if cart.UserID == userID {
			return &cart, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *cartStore) ListItems(ctx context.Context, cartID int64) ([]models.CartItem, error) {
	defer c.s.lock()()
	var items []models.CartItem
	for _, item := range c.s.st.cartItems {
		if item.CartID == cartID {
			if prod, ok := c.s.st.products[item.ProductID]; ok {
				item.ProductName = prod.Name
			}
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (c *cartStore) GetItemByProduct(ctx context.Context, cartID, productID int64) (*models.CartItem, error) {
	defer c.s.lock()()
	for _, item := range c.s.st.cartItems {
		if item.CartID == cartID && item.ProductID == productID {
			return &item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (c *cartStore) GetItemForUser(ctx context.Context, itemID, userID int64) (*models.CartItem, error) {
	defer c.s.lock()()
	item, ok := c.s.st.cartItems[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cart, ok := c.s.st.carts[item.CartID]
	if !ok || cart.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (c *cartStore) CreateItem(ctx context.Context, item *models.CartItem) error {
	defer c.s.lock()()
	item.ID = c.s.nextID()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	c.s.st.cartItems[item.ID] = *item
	return nil
}

func (c *cartStore) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	defer c.s.lock()()
	item, ok := c.s.st.cartItems[itemID]
	if !ok {
		return store.ErrNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	c.s.st.cartItems[itemID] = item
	return nil
}

func (c *cartStore) DeleteItem(ctx context.Context, itemID int64) error {
	defer c.s.lock()()
	if _, ok := c.s.st.cartItems[itemID]; !ok {
		return store.ErrNotFound
	}
	delete(c.s.st.cartItems, itemID)
	return nil
}

func (c *cartStore) DeleteItems(ctx context.Context, cartID int64) error {
	defer c.s.lock()()
	for id, item := range c.s.st.cartItems {
		if item.CartID == cartID {
			delete(c.s.st.cartItems, id)
		}
	}
	return nil
}

// --- orders ---

type orderStore struct{ s *Store }

func (o *orderStore) Create(ctx context.Context, order *models.Order) error {
	defer o.s.lock()()
	order.ID = o.s.nextID()
	o.s.st.orders[order.ID] = *order
	return nil
}

func (o *orderStore) CreateItem(ctx context.Context, item *models.OrderItem) error {
	defer o.s.lock()()
	item.ID = o.s.nextID()
	o.s.st.orderItems[item.ID] = *item
	return nil
}

func (o *orderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	defer o.s.lock()()
	if order, ok := o.s.st.orders[id]; ok {
		return &order, nil
	}
	return nil, store.ErrNotFound
}

func (o *orderStore) GetByIDForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	return o.GetByID(ctx, id)
}

func (o *orderStore) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	defer o.s.lock()()
	if order, ok := o.s.st.orders[id]; ok && order.UserID == userID {
		return &order, nil
	}
	return nil, store.ErrNotFound
}

func (o *orderStore) ListByUser(ctx context.Context, userID int64, page, size int) ([]models.Order, int64, error) {
	defer o.s.lock()()
	var all []models.Order
	for _, order := range o.s.st.orders {
		if order.UserID == userID {
			all = append(all, order)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].OrderDate.Equal(all[j].OrderDate) {
			return all[i].ID > all[j].ID
		}
		return all[i].OrderDate.After(all[j].OrderDate)
	})
	total := int64(len(all))
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (o *orderStore) ListItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	defer o.s.lock()()
	var items []models.OrderItem
	for _, item := range o.s.st.orderItems {
		if item.OrderID == orderID {
			if prod, ok := o.s.st.products[item.ProductID]; ok {
				item.ProductName = prod.Name
			}
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (o *orderStore) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	defer o.s.lock()()
	order, ok := o.s.st.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	o.s.st.orders[id] = order
	return nil
}
