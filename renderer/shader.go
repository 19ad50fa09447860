package renderer

import (
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}

// ReadShader loads a SPIR-V blob as the words the driver expects.
func ReadShader(fsys fs.FS, path string) ([]uint32, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read shader %s", path)
	}

	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Newf("shader %s is %d bytes, not a whole number of words", path, len(data))
	}

	return bytesToBytecode(data), nil
}

func createShaderModule(device core1_0.Device, fsys fs.FS, path string) (core1_0.ShaderModule, error) {
	code, err := ReadShader(fsys, path)
	if err != nil {
		return nil, err
	}

	module, _, err := device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create shader module %s", path)
	}

	return module, nil
}
