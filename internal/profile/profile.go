// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package profile

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"runtime"

	"github.com/aibor/pibuild/internal/devnode"
	"github.com/aibor/pibuild/internal/initramfs"
	"github.com/aibor/pibuild/internal/perms"
	"github.com/aibor/pibuild/internal/scaffold"
	"github.com/aibor/pibuild/internal/sys"
	"github.com/google/shlex"
)

// Default values of optional recipe keys.
const (
	DefaultBusyboxConfig = "busybox.defconfig"
	DefaultBuildDir      = "build"
	DefaultHostname      = "raspberrypi"
	DefaultRootfsSizeMB  = 512
	DefaultBootfsSizeMB  = 256
	DefaultFirmwareRepo  = "https://github.com/raspberrypi/firmware.git"

	busyboxURLFormat = "https://busybox.net/downloads/busybox-%s.tar.bz2"
)

// DefaultKernelCmdline is the template of the kernel command line written to
// cmdline.txt.
const DefaultKernelCmdline = "console=ttyS0,115200 console=tty1 " +
	"root={{ .RootDevice }} rootfstype=ext4 rootwait init=/init cma=128M " +
	"quiet rw initrd={{ .Initramfs }}"

// DefaultFirmwareConfig is the template of the firmware's config.txt.
const DefaultFirmwareConfig = `arm_64bit=1
kernel=kernel8.img
initramfs {{ .Initramfs }} followkernel

# Serial console
enable_uart=1

dtparam=audio=on

disable_splash=1
disable_overscan=1
overscan_left=0
overscan_right=0
overscan_top=0
overscan_bottom=0
`

// Profile is a validated build recipe.
type Profile struct {
	BusyboxVersion string `yaml:"busybox_version"`
	// BusyboxURL defaults to the upstream download location of the version.
	BusyboxURL string `yaml:"busybox_download_url"`
	// BusyboxConfig is the defconfig used as .config. A relative path is
	// relative to the recipe file.
	BusyboxConfig string `yaml:"busybox_config"`

	Arch              sys.Arch `yaml:"arch"`
	CrossCompile      string   `yaml:"cross_compile_prefix"`
	CrossCompilerRoot string   `yaml:"cross_compiler_root"`
	DisabledFeatures  []string `yaml:"disabled_features"`

	// BuildDir receives downloads, sources, the root filesystem tree and
	// all artifacts.
	BuildDir     string `yaml:"build_dir"`
	Hostname     string `yaml:"hostname"`
	RootfsSizeMB int    `yaml:"rootfs_size_mb"`
	BootfsSizeMB int    `yaml:"bootfs_size_mb"`
	RootDevice   string `yaml:"root_device"`

	FirmwareRepo string `yaml:"firmware_repo"`
	// FirmwareRef is checked out after cloning if set.
	FirmwareRef string `yaml:"firmware_ref"`

	// MakeArgs are additional make arguments, split like a shell does.
	MakeArgs string `yaml:"make_args"`
	Jobs     int    `yaml:"jobs"`
	// RootInit adds an /init to the root filesystem that execs /sbin/init,
	// so it can be booted without initramfs as well.
	RootInit bool `yaml:"root_init"`

	InstallStyle InstallStyle          `yaml:"install_style"`
	Archiver     initramfs.Archiver    `yaml:"archiver"`
	Compression  initramfs.Compression `yaml:"compression"`

	ScaffoldDirs         []string       `yaml:"scaffold_dirs"`
	DeviceNodes          []devnode.Spec `yaml:"device_nodes"`
	InitramfsDeviceNodes []devnode.Spec `yaml:"initramfs_device_nodes"`
	Permissions          perms.Rules    `yaml:"permissions"`

	KernelCmdline  string `yaml:"kernel_cmdline"`
	FirmwareConfig string `yaml:"firmware_config"`
}

// Default returns a profile with all optional values set.
func Default() Profile {
	return Profile{
		BusyboxConfig:        DefaultBusyboxConfig,
		BuildDir:             DefaultBuildDir,
		Hostname:             DefaultHostname,
		RootfsSizeMB:         DefaultRootfsSizeMB,
		BootfsSizeMB:         DefaultBootfsSizeMB,
		RootDevice:           initramfs.DefaultRootDevice,
		FirmwareRepo:         DefaultFirmwareRepo,
		Jobs:                 runtime.NumCPU(),
		InstallStyle:         InstallPrefix,
		Archiver:             initramfs.Builtin,
		Compression:          initramfs.Gzip,
		ScaffoldDirs:         scaffold.DefaultDirs(),
		DeviceNodes:          devnode.RootfsTable(),
		InitramfsDeviceNodes: devnode.InitramfsTable(),
		Permissions:          perms.DefaultRules(),
		KernelCmdline:        DefaultKernelCmdline,
		FirmwareConfig:       DefaultFirmwareConfig,
	}
}

// SourceURL returns the download location of the source archive.
func (p Profile) SourceURL() string {
	if p.BusyboxURL != "" {
		return p.BusyboxURL
	}

	return fmt.Sprintf(busyboxURLFormat, p.BusyboxVersion)
}

// SourceArchive is the path of the downloaded source archive. The file name
// is taken from the download location, so the compression can be detected
// by its extension.
func (p Profile) SourceArchive() string {
	name := "busybox-" + p.BusyboxVersion + ".tar.bz2"

	if parsed, err := url.Parse(p.SourceURL()); err == nil {
		if base := path.Base(parsed.Path); base != "." && base != "/" {
			name = base
		}
	}

	return filepath.Join(p.BuildDir, name)
}

// SourceDir is the directory the source archive is extracted to.
func (p Profile) SourceDir() string {
	return filepath.Join(p.BuildDir, "busybox-"+p.BusyboxVersion)
}

// RootfsDir is the root filesystem tree.
func (p Profile) RootfsDir() string {
	return filepath.Join(p.BuildDir, "rootfs")
}

// FirmwareDir is the clone of the firmware repository.
func (p Profile) FirmwareDir() string {
	return filepath.Join(p.BuildDir, "raspberrypi-firmware")
}

// RootfsImage is the path of the root filesystem image.
func (p Profile) RootfsImage() string {
	return filepath.Join(p.BuildDir, "rootfs.ext4")
}

// BootfsImage is the path of the boot partition image.
func (p Profile) BootfsImage() string {
	return filepath.Join(p.BuildDir, "bootfs.vfat")
}

// InitramfsName is the file name of the initramfs archive. It depends on
// the compression.
func (p Profile) InitramfsName() string {
	return "initramfs" + p.Compression.Ext()
}

// ManifestPath is the path of the build manifest.
func (p Profile) ManifestPath() string {
	return filepath.Join(p.BuildDir, "manifest.yaml")
}

// Env returns the environment for the package build.
func (p Profile) Env() []string {
	return []string{
		"ARCH=" + string(p.Arch),
		"CROSS_COMPILE=" + p.CrossCompile,
	}
}

// MakeArgList returns the additional make arguments.
func (p Profile) MakeArgList() ([]string, error) {
	args, err := shlex.Split(p.MakeArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: make_args: %w", ErrInvalidValue, err)
	}

	return args, nil
}

// Resolver returns the library resolver for the target toolchain.
func (p Profile) Resolver() sys.Resolver {
	return sys.Resolver{
		Prefix:  p.CrossCompile,
		Sysroot: p.CrossCompilerRoot,
		Arch:    p.Arch,
	}
}
