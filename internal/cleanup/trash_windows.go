//go:build windows

package cleanup

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// ─── Shell32 Syscalls ────────────────────────────────────────────────────────

var (
	modShell32          = windows.NewLazySystemDLL("shell32.dll")
	procFileOperation   = modShell32.NewProc("SHFileOperationW")
	procQueryRecycleBin = modShell32.NewProc("SHQueryRecycleBinW")
)

const (
	foDelete = 0x0003

	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoErrorUI      = 0x0400
)

// shFileOpStruct mirrors SHFILEOPSTRUCTW. shellapi.h packs it to 1 byte
// only on 32-bit; natural alignment matches the 64-bit layout.
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// shQueryRBInfo mirrors the Windows SHQUERYRBINFO struct.
type shQueryRBInfo struct {
	cbSize      uint32
	i64Size     int64
	i64NumItems int64
}

type recycleBin struct{}

// DefaultTrash returns the Recycle Bin.
func DefaultTrash() Trasher {
	return recycleBin{}
}

func (recycleBin) Available() bool {
	return procFileOperation.Find() == nil
}

// Trash sends path to the Recycle Bin via SHFileOperationW with
// FOF_ALLOWUNDO.
func (recycleBin) Trash(path string) error {
	from, err := windows.UTF16FromString(path)
	if err != nil {
		return err
	}
	// pFrom is a list terminated by an extra NUL.
	from = append(from, 0)

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent | fofNoErrorUI,
	}
	ret, _, _ := procFileOperation.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return fmt.Errorf("SHFileOperationW failed for %s: code 0x%x", path, uint32(ret))
	}
	if op.fAnyOperationsAborted != 0 {
		return fmt.Errorf("move to recycle bin aborted for %s", path)
	}
	return nil
}

// Size returns the Recycle Bin size across all drives.
func (recycleBin) Size(context.Context) (int64, error) {
	var info shQueryRBInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, _ := procQueryRecycleBin.Call(
		0, // NULL = query all drives
		uintptr(unsafe.Pointer(&info)),
	)
	if ret != 0 {
		return 0, fmt.Errorf("SHQueryRecycleBinW failed: HRESULT 0x%08x", uint32(ret))
	}
	return info.i64Size, nil
}
