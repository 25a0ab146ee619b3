// Package repotest provides an in-memory implementation of the repository
// layer for service tests. Its transaction manager serializes transactions
// on one mutex and restores a snapshot of the whole store when the closure
// fails, mirroring the atomicity the real database gives the services.
package repotest

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "mahfaza/internal/errors"
	"mahfaza/internal/models"
	"mahfaza/internal/repositories"
)

// Store holds all in-memory state and implements repositories.Manager.
type Store struct {
	mu sync.Mutex
	st *state

	// FailOp, when set, is consulted before every write with an operation
	// name; a non-nil result aborts the write. Used to test rollback.
	FailOp func(op string) error
}

type state struct {
	nextID uint

	users         map[uint]*models.User
	wallets       map[uint]*models.Wallet
	journal       []*models.Transaction
	otps          []*models.OtpCode
	transfers     []*models.Transfer
	rates         map[[2]string]*models.ExchangeRate
	exchanges     []*models.CurrencyExchange
	billers       map[uint]*models.Biller
	billPayments  []*models.BillPayment
	requests      map[uint]*models.MoneyRequest
	bankAccounts  map[uint]*models.BankAccount
	bankTxs       []*models.BankTransaction
	notifications []*models.Notification
}

// New creates an empty store.
func New() *Store {
	return &Store{st: &state{
		nextID:       1,
		users:        map[uint]*models.User{},
		wallets:      map[uint]*models.Wallet{},
		rates:        map[[2]string]*models.ExchangeRate{},
		billers:      map[uint]*models.Biller{},
		requests:     map[uint]*models.MoneyRequest{},
		bankAccounts: map[uint]*models.BankAccount{},
	}}
}

func (s *Store) id() uint {
	id := s.st.nextID
	s.st.nextID++
	return id
}

func (s *Store) fail(op string) error {
	if s.FailOp != nil {
		return s.FailOp(op)
	}
	return nil
}

func (s *Store) uow() *repositories.UnitOfWork {
	return &repositories.UnitOfWork{
		Users:         (*userRepo)(s),
		Wallets:       (*walletRepo)(s),
		Otps:          (*otpRepo)(s),
		Transfers:     (*transferRepo)(s),
		Rates:         (*rateRepo)(s),
		Exchanges:     (*exchangeRepo)(s),
		Billers:       (*billerRepo)(s),
		BillPayments:  (*billPaymentRepo)(s),
		Requests:      (*requestRepo)(s),
		Bank:          (*bankRepo)(s),
		Notifications: (*notificationRepo)(s),
	}
}

// Repos returns repositories over the shared state. Tests that use it
// concurrently with WithinTransaction must synchronize themselves.
func (s *Store) Repos() *repositories.UnitOfWork { return s.uow() }

// WithinTransaction serializes closures and rolls back every write when
// the closure errors.
func (s *Store) WithinTransaction(ctx context.Context, fn func(uow *repositories.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.clone()
	if err := fn(s.uow()); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (st *state) clone() *state {
	cp := &state{
		nextID:       st.nextID,
		users:        map[uint]*models.User{},
		wallets:      map[uint]*models.Wallet{},
		rates:        map[[2]string]*models.ExchangeRate{},
		billers:      map[uint]*models.Biller{},
		requests:     map[uint]*models.MoneyRequest{},
		bankAccounts: map[uint]*models.BankAccount{},
	}
	for k, v := range st.users {
		u := *v
		cp.users[k] = &u
	}
	for k, v := range st.wallets {
		w := *v
		cp.wallets[k] = &w
	}
	for k, v := range st.rates {
		r := *v
		cp.rates[k] = &r
	}
	for k, v := range st.billers {
		b := *v
		cp.billers[k] = &b
	}
	for k, v := range st.requests {
		r := *v
		cp.requests[k] = &r
	}
	for k, v := range st.bankAccounts {
		a := *v
		cp.bankAccounts[k] = &a
	}
	cp.journal = cloneSlice(st.journal)
	cp.otps = cloneSlice(st.otps)
	cp.transfers = cloneSlice(st.transfers)
	cp.exchanges = cloneSlice(st.exchanges)
	cp.billPayments = cloneSlice(st.billPayments)
	cp.bankTxs = cloneSlice(st.bankTxs)
	cp.notifications = cloneSlice(st.notifications)
	return cp
}

func cloneSlice[T any](in []*T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

// Seed helpers

// SeedUser adds an active user.
func (s *Store) SeedUser(email, phone string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		Email:    email,
		Phone:    phone,
		FullName: email,
		Password: "x",
		Role:     "user",
		Status:   models.UserStatusActive,
	}
	u.ID = s.id()
	s.st.users[u.ID] = u
	return u
}

// SeedWallet adds a wallet with the given balance.
func (s *Store) SeedWallet(userID uint, currency, balance string) *models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &models.Wallet{
		ID:       s.id(),
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
	}
	s.st.wallets[w.ID] = w
	return w
}

// SeedOtp adds a live code for (user, purpose).
func (s *Store) SeedOtp(userID uint, code, purpose string) *models.OtpCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &models.OtpCode{
		ID:        s.id(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	s.st.otps = append(s.st.otps, o)
	return o
}

// SeedBiller adds a biller to the catalog.
func (s *Store) SeedBiller(name, category string, active bool) *models.Biller {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &models.Biller{ID: s.id(), Name: name, Category: category, IsActive: active}
	s.st.billers[b.ID] = b
	return b
}

// SeedRate stores a local conversion rate.
func (s *Store) SeedRate(from, to, rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.rates[[2]string{from, to}] = &models.ExchangeRate{
		ID:           s.id(),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.RequireFromString(rate),
	}
}

// SeedBankAccount adds a bank account for a user.
func (s *Store) SeedBankAccount(userID uint, balance string) *models.BankAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &models.BankAccount{
		ID:            s.id(),
		UserID:        userID,
		AccountNumber: "FBA00000000",
		Balance:       decimal.RequireFromString(balance),
	}
	s.st.bankAccounts[a.ID] = a
	return a
}

// SeedRequest adds a money request.
func (s *Store) SeedRequest(fromUserID, toUserID uint, amount, currency, status string) *models.MoneyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.MoneyRequest{
		ID:         s.id(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
		Status:     status,
	}
	s.st.requests[r.ID] = r
	return r
}

// Inspection helpers

// Wallet returns the current wallet row.
func (s *Store) Wallet(id uint) *models.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.st.wallets[id]; ok {
		cp := *w
		return &cp
	}
	return nil
}

// Journal returns all journal entries in insert order.
func (s *Store) Journal() []*models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.st.journal)
}

// Transfers returns all transfer records.
func (s *Store) Transfers() []*models.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.st.transfers)
}

// Notifications returns all recorded notifications.
func (s *Store) Notifications() []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSlice(s.st.notifications)
}

// BankAccount returns the current bank account row for a user.
func (s *Store) BankAccount(userID uint) *models.BankAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.bankAccounts {
		if a.UserID == userID {
			cp := *a
			return &cp
		}
	}
	return nil
}

// Request returns the current money request row.
func (s *Store) Request(id uint) *models.MoneyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.st.requests[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

// OtpLive reports whether a code is still valid for (user, purpose).
func (s *Store) OtpLive(userID uint, code, purpose string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.st.otps {
		if o.UserID == userID && o.Code == code && o.Purpose == purpose &&
			!o.IsUsed && o.ExpiresAt.After(time.Now()) {
			return true
		}
	}
	return false
}

// Repository implementations

type userRepo Store

func (r *userRepo) Create(user *models.User) error {
	s := (*Store)(r)
	if err := s.fail("user.create"); err != nil {
		return err
	}
	for _, u := range s.st.users {
		if u.Email == user.Email {
			return repositories.ErrEmailTaken
		}
		if u.Phone == user.Phone {
			return repositories.ErrPhoneTaken
		}
	}
	user.ID = s.id()
	cp := *user
	s.st.users[cp.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(id uint) (*models.User, error) {
	s := (*Store)(r)
	if u, ok := s.st.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) GetByEmail(email string) (*models.User, error) {
	s := (*Store)(r)
	for _, u := range s.st.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) GetByPhone(phone string) (*models.User, error) {
	s := (*Store)(r)
	for _, u := range s.st.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) Update(user *models.User) error {
	s := (*Store)(r)
	if _, ok := s.st.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *user
	s.st.users[cp.ID] = &cp
	return nil
}

func (r *userRepo) IncrementTokenVersion(userID uint) error {
	s := (*Store)(r)
	u, ok := s.st.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TokenVersion++
	return nil
}

type walletRepo Store

func (r *walletRepo) Create(wallet *models.Wallet) error {
	s := (*Store)(r)
	if err := s.fail("wallet.create"); err != nil {
		return err
	}
	for _, w := range s.st.wallets {
		if w.UserID == wallet.UserID && w.Currency == wallet.Currency {
			return domain.ErrDuplicateCurrency
		}
	}
	wallet.ID = s.id()
	cp := *wallet
	s.st.wallets[cp.ID] = &cp
	return nil
}

func (r *walletRepo) GetByID(id uint) (*models.Wallet, error) {
	s := (*Store)(r)
	if w, ok := s.st.wallets[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrWalletNotFound
}

func (r *walletRepo) GetByIDForUpdate(id uint) (*models.Wallet, error) {
	return r.GetByID(id)
}

func (r *walletRepo) GetByUserAndCurrency(userID uint, currency string) (*models.Wallet, error) {
	s := (*Store)(r)
	for _, w := range s.st.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (r *walletRepo) ListByUser(userID uint) ([]*models.Wallet, error) {
	s := (*Store)(r)
	var out []*models.Wallet
	for _, w := range s.st.wallets {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *walletRepo) UpdateBalance(walletID uint, balance decimal.Decimal) error {
	s := (*Store)(r)
	if err := s.fail("wallet.update_balance"); err != nil {
		return err
	}
	w, ok := s.st.wallets[walletID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Balance = balance
	return nil
}

func (r *walletRepo) CreateJournalEntry(entry *models.Transaction) error {
	s := (*Store)(r)
	if err := s.fail("journal.create"); err != nil {
		return err
	}
	entry.ID = s.id()
	cp := *entry
	s.st.journal = append(s.st.journal, &cp)
	return nil
}

func (r *walletRepo) JournalByWallet(walletID uint, limit, offset int) ([]*models.Transaction, error) {
	s := (*Store)(r)
	var out []*models.Transaction
	for _, e := range s.st.journal {
		if e.WalletID == walletID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *walletRepo) JournalByReference(reference string) ([]*models.Transaction, error) {
	s := (*Store)(r)
	var out []*models.Transaction
	for _, e := range s.st.journal {
		if e.Reference == reference {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type otpRepo Store

func (r *otpRepo) Create(otp *models.OtpCode) error {
	s := (*Store)(r)
	otp.ID = s.id()
	cp := *otp
	s.st.otps = append(s.st.otps, &cp)
	return nil
}

func (r *otpRepo) GetValid(userID uint, code, purpose string, now time.Time) (*models.OtpCode, error) {
	s := (*Store)(r)
	for _, o := range s.st.otps {
		if o.UserID == userID && o.Code == code && o.Purpose == purpose &&
			!o.IsUsed && o.ExpiresAt.After(now) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *otpRepo) MarkUsed(id uint) error {
	s := (*Store)(r)
	if err := s.fail("otp.mark_used"); err != nil {
		return err
	}
	for _, o := range s.st.otps {
		if o.ID == id {
			o.IsUsed = true
		}
	}
	return nil
}

func (r *otpRepo) InvalidateActive(userID uint, purpose string) error {
	s := (*Store)(r)
	for _, o := range s.st.otps {
		if o.UserID == userID && o.Purpose == purpose && !o.IsUsed {
			o.IsUsed = true
		}
	}
	return nil
}

func (r *otpRepo) DeleteExpired(before time.Time) error {
	s := (*Store)(r)
	kept := s.st.otps[:0]
	for _, o := range s.st.otps {
		if !o.ExpiresAt.Before(before) {
			kept = append(kept, o)
		}
	}
	s.st.otps = kept
	return nil
}

type transferRepo Store

func (r *transferRepo) Create(transfer *models.Transfer) error {
	s := (*Store)(r)
	if err := s.fail("transfer.create"); err != nil {
		return err
	}
	transfer.ID = s.id()
	cp := *transfer
	s.st.transfers = append(s.st.transfers, &cp)
	return nil
}

func (r *transferRepo) ListByWallet(walletID uint, limit, offset int) ([]*models.Transfer, error) {
	s := (*Store)(r)
	var out []*models.Transfer
	for _, t := range s.st.transfers {
		if t.SenderWalletID == walletID || t.ReceiverWalletID == walletID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type rateRepo Store

func (r *rateRepo) GetRate(from, to string) (*models.ExchangeRate, error) {
	s := (*Store)(r)
	if rate, ok := s.st.rates[[2]string{from, to}]; ok {
		cp := *rate
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *rateRepo) Upsert(from, to string, rate decimal.Decimal) error {
	s := (*Store)(r)
	key := [2]string{from, to}
	if existing, ok := s.st.rates[key]; ok {
		existing.Rate = rate
		existing.UpdatedAt = time.Now()
		return nil
	}
	s.st.rates[key] = &models.ExchangeRate{
		ID:           s.id(),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		UpdatedAt:    time.Now(),
	}
	return nil
}

type exchangeRepo Store

func (r *exchangeRepo) Create(exchange *models.CurrencyExchange) error {
	s := (*Store)(r)
	if err := s.fail("exchange.create"); err != nil {
		return err
	}
	exchange.ID = s.id()
	cp := *exchange
	s.st.exchanges = append(s.st.exchanges, &cp)
	return nil
}

func (r *exchangeRepo) ListByUser(userID uint, limit, offset int) ([]*models.CurrencyExchange, error) {
	s := (*Store)(r)
	var out []*models.CurrencyExchange
	for _, e := range s.st.exchanges {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type billerRepo Store

func (r *billerRepo) GetByID(id uint) (*models.Biller, error) {
	s := (*Store)(r)
	if b, ok := s.st.billers[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBillerUnavailable
}

func (r *billerRepo) ListActive() ([]*models.Biller, error) {
	s := (*Store)(r)
	var out []*models.Biller
	for _, b := range s.st.billers {
		if b.IsActive {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *billerRepo) Create(biller *models.Biller) error {
	s := (*Store)(r)
	biller.ID = s.id()
	cp := *biller
	s.st.billers[cp.ID] = &cp
	return nil
}

type billPaymentRepo Store

func (r *billPaymentRepo) Create(payment *models.BillPayment) error {
	s := (*Store)(r)
	if err := s.fail("bill_payment.create"); err != nil {
		return err
	}
	payment.ID = s.id()
	cp := *payment
	s.st.billPayments = append(s.st.billPayments, &cp)
	return nil
}

func (r *billPaymentRepo) ListByUser(userID uint, limit, offset int) ([]*models.BillPayment, error) {
	s := (*Store)(r)
	var out []*models.BillPayment
	for _, p := range s.st.billPayments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type requestRepo Store

func (r *requestRepo) Create(request *models.MoneyRequest) error {
	s := (*Store)(r)
	request.ID = s.id()
	if request.Status == "" {
		request.Status = models.MoneyRequestStatusPending
	}
	cp := *request
	s.st.requests[cp.ID] = &cp
	return nil
}

func (r *requestRepo) GetByID(id uint) (*models.MoneyRequest, error) {
	s := (*Store)(r)
	if req, ok := s.st.requests[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (r *requestRepo) GetByIDForUpdate(id uint) (*models.MoneyRequest, error) {
	return r.GetByID(id)
}

func (r *requestRepo) Update(request *models.MoneyRequest) error {
	s := (*Store)(r)
	if err := s.fail("request.update"); err != nil {
		return err
	}
	if _, ok := s.st.requests[request.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	cp := *request
	s.st.requests[cp.ID] = &cp
	return nil
}

func (r *requestRepo) ListSent(userID uint) ([]*models.MoneyRequest, error) {
	s := (*Store)(r)
	var out []*models.MoneyRequest
	for _, req := range s.st.requests {
		if req.FromUserID == userID {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *requestRepo) ListReceived(userID uint) ([]*models.MoneyRequest, error) {
	s := (*Store)(r)
	var out []*models.MoneyRequest
	for _, req := range s.st.requests {
		if req.ToUserID == userID {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

type bankRepo Store

func (r *bankRepo) CreateAccount(account *models.BankAccount) error {
	s := (*Store)(r)
	account.ID = s.id()
	cp := *account
	s.st.bankAccounts[cp.ID] = &cp
	return nil
}

func (r *bankRepo) GetAccountByUser(userID uint) (*models.BankAccount, error) {
	s := (*Store)(r)
	for _, a := range s.st.bankAccounts {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrBankAccountNotFound
}

func (r *bankRepo) GetAccountByUserForUpdate(userID uint) (*models.BankAccount, error) {
	return r.GetAccountByUser(userID)
}

func (r *bankRepo) UpdateAccountBalance(accountID uint, balance decimal.Decimal) error {
	s := (*Store)(r)
	if err := s.fail("bank.update_balance"); err != nil {
		return err
	}
	a, ok := s.st.bankAccounts[accountID]
	if !ok {
		return domain.ErrBankAccountNotFound
	}
	a.Balance = balance
	return nil
}

func (r *bankRepo) CreateTransaction(tx *models.BankTransaction) error {
	s := (*Store)(r)
	if err := s.fail("bank_tx.create"); err != nil {
		return err
	}
	tx.ID = s.id()
	cp := *tx
	s.st.bankTxs = append(s.st.bankTxs, &cp)
	return nil
}

type notificationRepo Store

func (r *notificationRepo) Create(notification *models.Notification) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.ID = s.id()
	cp := *notification
	s.st.notifications = append(s.st.notifications, &cp)
	return nil
}

func (r *notificationRepo) ListByUser(userID uint, limit, offset int) ([]*models.Notification, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.st.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(id, userID uint) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.st.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}
