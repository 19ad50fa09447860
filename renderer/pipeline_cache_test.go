package renderer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
)

func pipelineCacheBlob(t *testing.T, header pipelineCacheHeader, payload []byte) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, common.ByteOrder, header))
	buf.Write(payload)
	return buf.Bytes()
}

func TestValidatePipelineCacheHeader(t *testing.T) {
	cacheUUID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	valid := pipelineCacheHeader{
		HeaderLength: pipelineCacheHeaderSize,
		Version:      pipelineCacheHeaderVersionOne,
		VendorID:     0x10de,
		DeviceID:     0x2204,
		CacheUUID:    cacheUUID,
	}

	testCases := []struct {
		name   string
		modify func(h *pipelineCacheHeader)
		errMsg string
	}{
		{name: "valid", modify: func(h *pipelineCacheHeader) {}},
		{name: "short header length", modify: func(h *pipelineCacheHeader) { h.HeaderLength = 16 }, errMsg: "header length"},
		{name: "version", modify: func(h *pipelineCacheHeader) { h.Version = 2 }, errMsg: "version"},
		{name: "vendor", modify: func(h *pipelineCacheHeader) { h.VendorID = 0x1002 }, errMsg: "vendor ID"},
		{name: "device", modify: func(h *pipelineCacheHeader) { h.DeviceID = 0x1 }, errMsg: "device ID"},
		{name: "uuid", modify: func(h *pipelineCacheHeader) { h.CacheUUID = uuid.Nil }, errMsg: "UUID"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			header := valid
			tc.modify(&header)

			err := validatePipelineCacheHeader(pipelineCacheBlob(t, header, []byte{1, 2, 3, 4}), 0x10de, 0x2204, cacheUUID)
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestValidatePipelineCacheHeaderTruncated(t *testing.T) {
	err := validatePipelineCacheHeader(make([]byte, 12), 0, 0, uuid.Nil)
	require.ErrorContains(t, err, "shorter than its header")
}
