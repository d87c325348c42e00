package services_test

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppointmentRepository) CountByStatus(ctx context.Context, from, to dates.Date) (map[entities.AppointmentStatus]int, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.AppointmentStatus]int), args.Error(1)
}

type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) Create(ctx context.Context, holiday *entities.Holiday) error {
	args := m.Called(ctx, holiday)
	return args.Error(0)
}

func (m *MockHolidayRepository) GetByID(ctx context.Context, id string) (*entities.Holiday, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) Update(ctx context.Context, holiday *entities.Holiday) error {
	args := m.Called(ctx, holiday)
	return args.Error(0)
}

func (m *MockHolidayRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHolidayRepository) ListByDate(ctx context.Context, day dates.Date) ([]*entities.Holiday, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) List(ctx context.Context, filter entities.HolidayFilter) ([]*entities.Holiday, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Holiday), args.Error(1)
}

func (m *MockHolidayRepository) Upsert(ctx context.Context, holidays []*entities.Holiday) (int, error) {
	args := m.Called(ctx, holidays)
	return args.Int(0), args.Error(1)
}

type MockContentBlockRepository struct {
	mock.Mock
}

func (m *MockContentBlockRepository) Create(ctx context.Context, block *entities.ContentBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockContentBlockRepository) GetByID(ctx context.Context, id string) (*entities.ContentBlock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ContentBlock), args.Error(1)
}

func (m *MockContentBlockRepository) ListByPage(ctx context.Context, page string, filter repositories.ContentBlockFilter) ([]*entities.ContentBlock, error) {
	args := m.Called(ctx, page, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ContentBlock), args.Error(1)
}

func (m *MockContentBlockRepository) ListByPages(ctx context.Context, pages []string) (map[string][]*entities.ContentBlock, error) {
	args := m.Called(ctx, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*entities.ContentBlock), args.Error(1)
}

func (m *MockContentBlockRepository) ListAll(ctx context.Context) ([]*entities.ContentBlock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ContentBlock), args.Error(1)
}

func (m *MockContentBlockRepository) MaxOrderIndex(ctx context.Context, page string) (int, bool, error) {
	args := m.Called(ctx, page)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockContentBlockRepository) Update(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ContentBlock), args.Error(1)
}

func (m *MockContentBlockRepository) SwapOrder(ctx context.Context, a, b *entities.ContentBlock) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockContentBlockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentBlockRepository) SearchText(ctx context.Context, query string, limit int) ([]*entities.ContentBlock, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ContentBlock), args.Error(1)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) Create(ctx context.Context, doctor *entities.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context, specialty entities.Specialty) ([]*entities.Doctor, error) {
	args := m.Called(ctx, specialty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) Update(ctx context.Context, doctor *entities.Doctor) error {
	args := m.Called(ctx, doctor)
	return args.Error(0)
}

func (m *MockDoctorRepository) SwapOrder(ctx context.Context, a, b *entities.Doctor) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockDoctorRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDoctorRepository) SearchText(ctx context.Context, query string, limit int) ([]*entities.Doctor, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *entities.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) GetByID(ctx context.Context, id string) (*entities.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*entities.AdminUser, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Update(ctx context.Context, user *entities.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ContentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ContentEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.ContentEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) EnsureCollection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSearchIndex) Index(ctx context.Context, doc providers.ContentDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSearchIndex) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, query string, limit int) ([]*entities.SearchHit, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SearchHit), args.Error(1)
}

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheProvider) Increment(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	args := m.Called(ctx, key, expirationSeconds)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheProvider) SetNX(ctx context.Context, key string, value []byte, expirationSeconds int) (bool, error) {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Bool(0), args.Error(1)
}

type MockHolidayProvider struct {
	mock.Mock
}

func (m *MockHolidayProvider) PublicHolidays(ctx context.Context, year int) ([]*entities.Holiday, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Holiday), args.Error(1)
}

func (m *MockHolidayProvider) Name() string {
	return "mock"
}

type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (*providers.StoredMedia, error) {
	args := m.Called(ctx, name, contentType, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.StoredMedia), args.Error(1)
}

func (m *MockMediaStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingEmailSender keeps every message it is asked to send
type recordingEmailSender struct {
	mu   sync.Mutex
	sent []providers.EmailMessage
	err  error
}

func (r *recordingEmailSender) SendEmail(_ context.Context, msg providers.EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingEmailSender) messages() []providers.EmailMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]providers.EmailMessage(nil), r.sent...)
}

type recordingMessageSender struct {
	mu     sync.Mutex
	phones []string
	bodies []string
	err    error
}

func (r *recordingMessageSender) SendText(_ context.Context, phone, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phones = append(r.phones, phone)
	r.bodies = append(r.bodies, body)
	return r.err
}

type MockAppointmentNotifier struct {
	mock.Mock
}

func (m *MockAppointmentNotifier) NotifyAppointmentRequested(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentNotifier) NotifyStatusChanged(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}
