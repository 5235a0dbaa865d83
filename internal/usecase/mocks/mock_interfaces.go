//	mockgen -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks github.com/fintech-kernel/acctd/internal/usecase Cache,LedgerRepository
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"
	time "time"

	domain "github.com/fintech-kernel/acctd/internal/domain"
	usecase "github.com/fintech-kernel/acctd/internal/usecase"
	decimal "github.com/shopspring/decimal"
	gomock "go.uber.org/mock/gomock"
)

// MockCache is a mock of Cache interface.
type MockCache struct {
	ctrl     *gomock.Controller
	recorder *MockCacheMockRecorder
	isgomock struct{}
}

// MockCacheMockRecorder is the mock recorder for MockCache.
type MockCacheMockRecorder struct {
	mock *MockCache
}

// NewMockCache creates a new mock instance.
func NewMockCache(ctrl *gomock.Controller) *MockCache {
	mock := &MockCache{ctrl: ctrl}
	mock.recorder = &MockCacheMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCache) EXPECT() *MockCacheMockRecorder {
	return m.recorder
}

// Delete mocks base method.
func (m *MockCache) Delete(arg0 context.Context, arg1 string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", arg0, arg1)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockCacheMockRecorder) Delete(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockCache)(nil).Delete), arg0, arg1)
}

// Get mocks base method.
func (m *MockCache) Get(arg0 context.Context, arg1 string) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", arg0, arg1)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockCacheMockRecorder) Get(arg0, arg1 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockCache)(nil).Get), arg0, arg1)
}

// Set mocks base method.
func (m *MockCache) Set(arg0 context.Context, arg1, arg2 string, arg3 time.Duration) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Set", arg0, arg1, arg2, arg3)
	ret0, _ := ret[0].(error)
	return ret0
}

// Set indicates an expected call of Set.
func (mr *MockCacheMockRecorder) Set(arg0, arg1, arg2, arg3 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Set", reflect.TypeOf((*MockCache)(nil).Set), arg0, arg1, arg2, arg3)
}

// MockLedgerRepository is a mock of LedgerRepository interface.
type MockLedgerRepository struct {
	ctrl     *gomock.Controller
	recorder *MockLedgerRepositoryMockRecorder
	isgomock struct{}
}

// MockLedgerRepositoryMockRecorder is the mock recorder for MockLedgerRepository.
type MockLedgerRepositoryMockRecorder struct {
	mock *MockLedgerRepository
}

// NewMockLedgerRepository creates a new mock instance.
func NewMockLedgerRepository(ctrl *gomock.Controller) *MockLedgerRepository {
	mock := &MockLedgerRepository{ctrl: ctrl}
	mock.recorder = &MockLedgerRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLedgerRepository) EXPECT() *MockLedgerRepositoryMockRecorder {
	return m.recorder
}

// AccountActivity mocks base method.
func (m *MockLedgerRepository) AccountActivity(arg0 context.Context, arg1, arg2 string, arg3 time.Time) (decimal.Decimal, decimal.Decimal, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AccountActivity", arg0, arg1, arg2, arg3)
	ret0, _ := ret[0].(decimal.Decimal)
	ret1, _ := ret[1].(decimal.Decimal)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// AccountActivity indicates an expected call of AccountActivity.
func (mr *MockLedgerRepositoryMockRecorder) AccountActivity(arg0, arg1, arg2, arg3 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AccountActivity", reflect.TypeOf((*MockLedgerRepository)(nil).AccountActivity), arg0, arg1, arg2, arg3)
}

// ActivityByAccount mocks base method.
func (m *MockLedgerRepository) ActivityByAccount(arg0 context.Context, arg1 string, arg2 time.Time) ([]usecase.AccountActivity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ActivityByAccount", arg0, arg1, arg2)
	ret0, _ := ret[0].([]usecase.AccountActivity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ActivityByAccount indicates an expected call of ActivityByAccount.
func (mr *MockLedgerRepositoryMockRecorder) ActivityByAccount(arg0, arg1, arg2 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ActivityByAccount", reflect.TypeOf((*MockLedgerRepository)(nil).ActivityByAccount), arg0, arg1, arg2)
}

// ActivityByCodes mocks base method.
func (m *MockLedgerRepository) ActivityByCodes(arg0 context.Context, arg1 string, arg2 []string, arg3, arg4 time.Time) ([]usecase.AccountActivity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ActivityByCodes", arg0, arg1, arg2, arg3, arg4)
	ret0, _ := ret[0].([]usecase.AccountActivity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ActivityByCodes indicates an expected call of ActivityByCodes.
func (mr *MockLedgerRepositoryMockRecorder) ActivityByCodes(arg0, arg1, arg2, arg3, arg4 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ActivityByCodes", reflect.TypeOf((*MockLedgerRepository)(nil).ActivityByCodes), arg0, arg1, arg2, arg3, arg4)
}

// ActivityByType mocks base method.
func (m *MockLedgerRepository) ActivityByType(arg0 context.Context, arg1 string, arg2 []domain.AccountType, arg3, arg4 time.Time) ([]usecase.AccountActivity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ActivityByType", arg0, arg1, arg2, arg3, arg4)
	ret0, _ := ret[0].([]usecase.AccountActivity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ActivityByType indicates an expected call of ActivityByType.
func (mr *MockLedgerRepositoryMockRecorder) ActivityByType(arg0, arg1, arg2, arg3, arg4 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ActivityByType", reflect.TypeOf((*MockLedgerRepository)(nil).ActivityByType), arg0, arg1, arg2, arg3, arg4)
}

// CheckConsistency mocks base method.
func (m *MockLedgerRepository) CheckConsistency(arg0 context.Context, arg1 string, arg2 time.Time) (decimal.Decimal, decimal.Decimal, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CheckConsistency", arg0, arg1, arg2)
	ret0, _ := ret[0].(decimal.Decimal)
	ret1, _ := ret[1].(decimal.Decimal)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// CheckConsistency indicates an expected call of CheckConsistency.
func (mr *MockLedgerRepositoryMockRecorder) CheckConsistency(arg0, arg1, arg2 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CheckConsistency", reflect.TypeOf((*MockLedgerRepository)(nil).CheckConsistency), arg0, arg1, arg2)
}

// Lines mocks base method.
func (m *MockLedgerRepository) Lines(arg0 context.Context, arg1, arg2 string, arg3, arg4 time.Time) ([]usecase.LedgerLine, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lines", arg0, arg1, arg2, arg3, arg4)
	ret0, _ := ret[0].([]usecase.LedgerLine)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Lines indicates an expected call of Lines.
func (mr *MockLedgerRepositoryMockRecorder) Lines(arg0, arg1, arg2, arg3, arg4 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lines", reflect.TypeOf((*MockLedgerRepository)(nil).Lines), arg0, arg1, arg2, arg3, arg4)
}
