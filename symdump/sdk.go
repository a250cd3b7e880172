package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/fn"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// sdkDirs returns the sdk's cmd/internal and the cmd/objfile copy goloader
// reads go objects through.
func sdkDirs() (src, dst string, err error) {
	root := os.Getenv("GOROOT")
	if root == "" {
		return "", "", fmt.Errorf("GOROOT is not set")
	}
	return filepath.Join(root, "src", "cmd", "internal"), filepath.Join(root, "src", "cmd", "objfile"), nil
}

func clean(*cli.Context) (err error) {
	var dir string
	if _, dir, err = sdkDirs(); err != nil {
		return
	}
	logger.Debug("clean go sdk", zap.String("dir", dir))
	if _, err = os.Stat(dir); err == nil {
		err = os.RemoveAll(dir)
		logger.Debug("removed", zap.String("dir", dir))
	} else {
		err = nil
		logger.Debug("did nothing", zap.String("dir", dir))
	}
	return
}

func prepare(*cli.Context) (err error) {
	var src, dir string
	if src, dir, err = sdkDirs(); err != nil {
		return
	}
	logger.Debug("prepare go sdk", zap.String("from", src), zap.String("to", dir))
	if _, err = os.Stat(dir); err != nil && os.IsNotExist(err) {
		err = CopyDir(src, dir, nil)
		logger.Debug("copied", zap.String("from", src), zap.String("to", dir))
	} else {
		logger.Debug("did nothing", zap.String("dir", dir))
	}
	return
}

// CopyFile from src to dest with optional src file info
func CopyFile(src string, dest string, si fs.FileInfo) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(sf)
	df, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(df)
	if _, err = io.Copy(df, sf); err != nil {
		return
	}
	if si == nil {
		if si, err = os.Stat(src); err != nil {
			return
		}
	}
	return os.Chmod(dest, si.Mode())
}

// CopyDir from src to dest with optional src file info
func CopyDir(src string, dest string, si fs.FileInfo) (err error) {
	if si == nil {
		if si, err = os.Stat(src); err != nil {
			return err
		}
	}
	if err = os.MkdirAll(dest, si.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		var info fs.FileInfo
		if info, err = e.Info(); err != nil {
			return
		}
		sp, dp := filepath.Join(src, e.Name()), filepath.Join(dest, e.Name())
		if e.IsDir() {
			err = CopyDir(sp, dp, info)
		} else {
			err = CopyFile(sp, dp, info)
		}
		if err != nil {
			return
		}
	}
	return
}
