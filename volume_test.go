package fat12

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func mustOpenImage(t *testing.T, im *fatImage) (*Disk, func()) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "disk.img", im.buf, 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	d, err := OpenDisk(fs, "disk.img")
	if err != nil {
		t.Fatalf("OpenDisk() error: %v", err)
	}
	return d, func() { _ = d.Close() }
}

// minimalFATImage builds a 64-sector image: boot sector, 2x1-sector FATs, a
// 1-sector root directory and 60 data sectors, matching fixture_test.go's
// layout constants.
func minimalFATImage() *fatImage {
	im := newFATImage(64)
	im.writeBootSector()
	im.writeFAT([]uint16{0xFF0, 0xFFF, 0xFFF})
	return im
}

func TestMount(t *testing.T) {
	t.Run("mounts a valid image", func(t *testing.T) {
		im := minimalFATImage()
		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		vol, err := Mount(d, 0)
		if err != nil {
			t.Fatalf("Mount() error: %v", err)
		}
		defer vol.Close()

		if vol.FirstDataSector() != fxFirstDataSector {
			t.Errorf("FirstDataSector() = %d, want %d", vol.FirstDataSector(), fxFirstDataSector)
		}
		if vol.BytesPerSector() != fxBytesPerSector {
			t.Errorf("BytesPerSector() = %d, want %d", vol.BytesPerSector(), fxBytesPerSector)
		}
		if len(vol.RootEntries()) != fxMaxRootEntries {
			t.Errorf("len(RootEntries()) = %d, want %d", len(vol.RootEntries()), fxMaxRootEntries)
		}
	})

	t.Run("1.44MB floppy geometry computes data_start = 33", func(t *testing.T) {
		// 2880 sectors, 2 FATs of 9 sectors, 224 root entries, 1 sector/cluster.
		im := newFATImage(2880)
		b := im.sector(0)
		defaultByteOrder.PutUint16(b[11:13], 512)
		b[13] = 1
		defaultByteOrder.PutUint16(b[14:16], 1)
		b[16] = 2
		defaultByteOrder.PutUint16(b[17:19], 224)
		b[21] = 0xF0
		defaultByteOrder.PutUint16(b[22:24], 9)
		b[38] = 0x29
		b[510], b[511] = 0x55, 0xAA

		fat := packFAT12([]uint16{0xFF0, 0xFFF}, 9*512)
		copy(im.sector(1), fat)
		copy(im.sector(1+9), fat)

		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		vol, err := Mount(d, 0)
		if err != nil {
			t.Fatalf("Mount() error: %v", err)
		}
		defer vol.Close()

		if vol.FirstDataSector() != 33 {
			t.Errorf("FirstDataSector() = %d, want 33", vol.FirstDataSector())
		}
	})

	t.Run("bad signature fails InvalidData", func(t *testing.T) {
		im := minimalFATImage()
		im.sector(0)[511] = 0x00
		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		_, err := Mount(d, 0)
		if !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Mount() error = %v, want ErrInvalidData", err)
		}
	})

	t.Run("bad extended boot signature fails InvalidData", func(t *testing.T) {
		im := minimalFATImage()
		im.sector(0)[38] = 0x00
		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		_, err := Mount(d, 0)
		if !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Mount() error = %v, want ErrInvalidData", err)
		}
	})

	t.Run("bad FAT count fails InvalidData", func(t *testing.T) {
		im := minimalFATImage()
		im.sector(0)[16] = 3
		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		_, err := Mount(d, 0)
		if !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Mount() error = %v, want ErrInvalidData", err)
		}
	})

	t.Run("mismatched FAT mirrors fail InvalidData with no partial state", func(t *testing.T) {
		im := minimalFATImage()
		im.corruptSecondFAT(0, 0xFF)
		d, closeFn := mustOpenImage(t, im)
		defer closeFn()

		vol, err := Mount(d, 0)
		if !errors.Is(err, ErrInvalidData) {
			t.Fatalf("Mount() error = %v, want ErrInvalidData", err)
		}
		if vol != nil {
			t.Fatalf("Mount() returned non-nil Volume on failure")
		}
	})

	t.Run("nil disk fails InvalidArgument", func(t *testing.T) {
		_, err := Mount(nil, 0)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Mount() error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestVolume_Close(t *testing.T) {
	im := minimalFATImage()
	d, closeFn := mustOpenImage(t, im)
	defer closeFn()

	vol, err := Mount(d, 0)
	if err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	if err := vol.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := vol.Close(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("second Close() error = %v, want ErrInvalidArgument", err)
	}
}
