// Package allocmock provides a hand-authored gomock-style mock of
// dhat.Allocator, in the shape mockgen would produce, for tests that need
// to verify the Interceptor forwards to its wrapped allocator exactly once
// per call.
package allocmock

import (
	"reflect"
	"unsafe"

	"go.uber.org/mock/gomock"

	"github.com/go-dhat/dhat"
)

// MockAllocator is a mock of the dhat.Allocator interface.
type MockAllocator struct {
	ctrl     *gomock.Controller
	recorder *MockAllocatorMockRecorder
}

// MockAllocatorMockRecorder records expected calls on a MockAllocator.
type MockAllocatorMockRecorder struct {
	mock *MockAllocator
}

// NewMockAllocator creates a new mock instance.
func NewMockAllocator(ctrl *gomock.Controller) *MockAllocator {
	m := &MockAllocator{ctrl: ctrl}
	m.recorder = &MockAllocatorMockRecorder{mock: m}

	return m
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAllocator) EXPECT() *MockAllocatorMockRecorder {
	return m.recorder
}

// Alloc mocks dhat.Allocator.Alloc.
func (m *MockAllocator) Alloc(size uintptr) unsafe.Pointer {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Alloc", size)
	ret0, _ := ret[0].(unsafe.Pointer)

	return ret0
}

// Alloc indicates an expected call of Alloc.
func (mr *MockAllocatorMockRecorder) Alloc(size any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Alloc", reflect.TypeOf((*MockAllocator)(nil).Alloc), size)
}

// Free mocks dhat.Allocator.Free.
func (m *MockAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Free", ptr, size)
}

// Free indicates an expected call of Free.
func (mr *MockAllocatorMockRecorder) Free(ptr, size any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Free", reflect.TypeOf((*MockAllocator)(nil).Free), ptr, size)
}

// Realloc mocks dhat.Allocator.Realloc.
func (m *MockAllocator) Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	m.ctrl.T.Helper()

	ret := m.ctrl.Call(m, "Realloc", ptr, oldSize, newSize)
	ret0, _ := ret[0].(unsafe.Pointer)

	return ret0
}

// Realloc indicates an expected call of Realloc.
func (mr *MockAllocatorMockRecorder) Realloc(ptr, oldSize, newSize any) *gomock.Call {
	mr.mock.ctrl.T.Helper()

	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Realloc", reflect.TypeOf((*MockAllocator)(nil).Realloc), ptr, oldSize, newSize)
}

var _ dhat.Allocator = (*MockAllocator)(nil)
