package dist

import "errors"

var ErrFileSystemOperation = errors.New("file system operation failed")
