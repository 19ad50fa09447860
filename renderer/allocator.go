package renderer

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/memutils"
	"github.com/vkngwrapper/arsenal/vam"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// Allocator binds the general purpose memory allocator to one device. It holds no
// allocations of its own.
type Allocator struct {
	Device core1_0.Device
	VAM    *vam.Allocator
}

type AllocatedBuffer struct {
	Buffer     core1_0.Buffer
	Allocation *vam.Allocation
	Size       int
}

type AllocatedImage struct {
	Image      core1_0.Image
	Allocation *vam.Allocation
	Format     core1_0.Format
	Extent     core1_0.Extent2D
}

func BuildAllocator(instance Instance, physical PhysicalDevice, device Device, logger *slog.Logger) (Allocator, error) {
	allocator, err := vam.New(logger, instance.Handle, physical.Handle, device.Handle, vam.CreateOptions{})
	if err != nil {
		return Allocator{}, initError("allocator", core1_0.VKSuccess, err)
	}

	return Allocator{Device: device.Handle, VAM: allocator}, nil
}

func (a Allocator) Destroy() {
	a.VAM.Destroy()
}

// CreateBuffer creates a buffer bound to fresh memory. Host visible buffers are placed
// in memory the CPU can write sequentially; everything else prefers device-local memory.
func (a Allocator) CreateBuffer(size int, usage core1_0.BufferUsageFlags, hostVisible bool) (AllocatedBuffer, error) {
	if size <= 0 {
		return AllocatedBuffer{}, errors.Newf("cannot create buffer of size %d", size)
	}

	buffer, _, err := a.Device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return AllocatedBuffer{}, errors.Wrap(err, "create buffer")
	}

	createInfo := vam.AllocationCreateInfo{Usage: vam.MemoryUsageAuto}
	if hostVisible {
		createInfo.Flags = memutils.AllocationCreateHostAccessSequentialWrite
	}

	allocation := new(vam.Allocation)
	_, err = a.VAM.AllocateMemoryForBuffer(buffer, createInfo, allocation)
	if err != nil {
		buffer.Destroy(nil)
		return AllocatedBuffer{}, errors.Wrap(err, "allocate buffer memory")
	}

	_, err = allocation.BindBufferMemory(0, buffer, nil)
	if err != nil {
		allocation.Free()
		buffer.Destroy(nil)
		return AllocatedBuffer{}, errors.Wrap(err, "bind buffer memory")
	}

	return AllocatedBuffer{Buffer: buffer, Allocation: allocation, Size: size}, nil
}

// CreateImage creates a 2D, single-layer image in device-local memory.
func (a Allocator) CreateImage(format core1_0.Format, extent core1_0.Extent2D, usage core1_0.ImageUsageFlags) (AllocatedImage, error) {
	image, _, err := a.Device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        core1_0.ImageTilingOptimal,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return AllocatedImage{}, errors.Wrap(err, "create image")
	}

	allocation := new(vam.Allocation)
	_, err = a.VAM.AllocateMemoryForImage(image, vam.AllocationCreateInfo{Usage: vam.MemoryUsageAuto}, allocation)
	if err != nil {
		image.Destroy(nil)
		return AllocatedImage{}, errors.Wrap(err, "allocate image memory")
	}

	_, err = allocation.BindImageMemory(0, image, nil)
	if err != nil {
		allocation.Free()
		image.Destroy(nil)
		return AllocatedImage{}, errors.Wrap(err, "bind image memory")
	}

	return AllocatedImage{Image: image, Allocation: allocation, Format: format, Extent: extent}, nil
}

func (b AllocatedBuffer) destroy() {
	b.Buffer.Destroy(nil)
	b.Allocation.Free()
}

func (i AllocatedImage) destroy() {
	i.Image.Destroy(nil)
	i.Allocation.Free()
}

// Write maps the buffer, copies data encoded in the device byte order at offset and
// unmaps it again.
func (b AllocatedBuffer) Write(offset int, data any) error {
	encoded, err := encode(data)
	if err != nil {
		return err
	}

	if offset+len(encoded) > b.Size {
		return errors.Newf("write of %d bytes at offset %d overflows buffer of %d bytes", len(encoded), offset, b.Size)
	}

	memoryPtr, _, err := b.Allocation.Map()
	if err != nil {
		return errors.Wrap(err, "map buffer")
	}
	defer b.Allocation.Unmap()

	dataBuffer := unsafe.Slice((*byte)(unsafe.Add(memoryPtr, offset)), len(encoded))
	copy(dataBuffer, encoded)
	return nil
}

func encode(data any) ([]byte, error) {
	if raw, isBytes := data.([]byte); isBytes {
		return raw, nil
	}

	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return buf.Bytes(), nil
}
