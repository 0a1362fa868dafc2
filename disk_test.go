package fat12

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestOpenDisk(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(fs afero.Fs)
		path       string
		nilFs      bool
		wantErr    error
		wantSector uint32
	}{
		{
			name: "2 whole sectors",
			setup: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "disk.img", make([]byte, 2*sectorSize), 0o644)
			},
			path:       "disk.img",
			wantSector: 2,
		},
		{
			name: "trailing partial sector is truncated",
			setup: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "disk.img", make([]byte, 2*sectorSize+100), 0o644)
			},
			path:       "disk.img",
			wantSector: 2,
		},
		{
			name:    "missing file",
			setup:   func(fs afero.Fs) {},
			path:    "nope.img",
			wantErr: ErrNotFound,
		},
		{
			name:    "empty path",
			setup:   func(fs afero.Fs) {},
			path:    "",
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "nil filesystem",
			setup:   func(fs afero.Fs) {},
			nilFs:   true,
			path:    "disk.img",
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.setup(fs)

			var target afero.Fs = fs
			if tt.nilFs {
				target = nil
			}

			d, err := OpenDisk(target, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("OpenDisk() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenDisk() unexpected error: %v", err)
			}
			defer d.Close()

			if got := d.SectorCount(); got != tt.wantSector {
				t.Errorf("SectorCount() = %d, want %d", got, tt.wantSector)
			}
		})
	}
}

func TestDisk_Read(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := make([]byte, 4*sectorSize)
	for i := range content {
		content[i] = byte(i)
	}
	_ = afero.WriteFile(fs, "disk.img", content, 0o644)

	d, err := OpenDisk(fs, "disk.img")
	if err != nil {
		t.Fatalf("OpenDisk() error: %v", err)
	}
	defer d.Close()

	t.Run("reads requested sectors", func(t *testing.T) {
		buf := make([]byte, 2*sectorSize)
		n, err := d.Read(1, buf, 2)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if n != 2 {
			t.Fatalf("Read() = %d, want 2", n)
		}
		if buf[0] != content[sectorSize] {
			t.Errorf("Read() returned wrong data at offset 0")
		}
	})

	t.Run("zero-length read at one-past-end succeeds", func(t *testing.T) {
		buf := make([]byte, 0)
		n, err := d.Read(d.SectorCount(), buf, 0)
		if err != nil {
			t.Fatalf("Read() error: %v", err)
		}
		if n != 0 {
			t.Fatalf("Read() = %d, want 0", n)
		}
	})

	t.Run("positive read at one-past-end fails", func(t *testing.T) {
		buf := make([]byte, sectorSize)
		_, err := d.Read(d.SectorCount(), buf, 1)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Read() error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("read crossing the end fails", func(t *testing.T) {
		buf := make([]byte, 2*sectorSize)
		_, err := d.Read(d.SectorCount()-1, buf, 2)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Read() error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("first sector beyond disk fails", func(t *testing.T) {
		buf := make([]byte, sectorSize)
		_, err := d.Read(d.SectorCount()+1, buf, 1)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Read() error = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("nil buffer rejected", func(t *testing.T) {
		_, err := d.Read(0, nil, 1)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Read() error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestDisk_Close(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "disk.img", make([]byte, sectorSize), 0o644)
	d, err := OpenDisk(fs, "disk.img")
	if err != nil {
		t.Fatalf("OpenDisk() error: %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := d.Close(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("second Close() error = %v, want ErrInvalidArgument", err)
	}
}
