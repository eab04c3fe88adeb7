package buildsys

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/ftrecipe/pkg/core"
)

type recordingRunner struct {
	commands []Command
	err      error
}

func (r *recordingRunner) Run(_ context.Context, cmd Command) error {
	r.commands = append(r.commands, cmd)
	return r.err
}

func linuxConfig(t *testing.T, runner Runner) Config {
	t.Helper()
	work := t.TempDir()
	return Config{
		WorkDir:    work,
		SourceDir:  filepath.Join(work, core.SourceSubfolder),
		BuildDir:   filepath.Join(work, core.BuildSubfolder),
		InstallDir: filepath.Join(work, "package"),
		Settings: core.Settings{
			OS:        core.OSLinux,
			Arch:      "x86_64",
			Compiler:  core.Compiler{Name: core.CompilerGCC, Version: "9"},
			BuildType: core.BuildTypeRelease,
		},
		Jobs:   4,
		Runner: runner,
	}
}

func TestCMakeCommands(t *testing.T) {
	runner := &recordingRunner{}
	cfg := linuxConfig(t, runner)
	cfg.Generator = "Ninja"
	cfg.PrefixPath = []string{"/deps/zlib", "/deps/libpng"}

	bs, err := New(core.BuildSystemCMake, cfg)
	require.NoError(t, err)
	assert.Equal(t, "cmake", bs.Name())

	ctx := context.Background()
	require.NoError(t, bs.Configure(ctx, map[string]string{
		"FT_WITH_ZLIB":      "ON",
		"BUILD_SHARED_LIBS": "OFF",
	}))
	require.NoError(t, bs.Build(ctx))
	require.NoError(t, bs.Install(ctx))
	require.Len(t, runner.commands, 3)

	configure := runner.commands[0]
	assert.Equal(t, "cmake", configure.Name)
	assert.Equal(t, []string{
		"-S", cfg.WorkDir,
		"-B", cfg.BuildDir,
		"-G", "Ninja",
		"-DCMAKE_INSTALL_PREFIX=" + cfg.InstallDir,
		"-DCMAKE_PREFIX_PATH=/deps/zlib;/deps/libpng",
		"-DBUILD_SHARED_LIBS=OFF",
		"-DFT_WITH_ZLIB=ON",
	}, configure.Args)
	assert.DirExists(t, cfg.BuildDir)

	assert.Equal(t, []string{"--build", cfg.BuildDir, "--config", "Release", "--parallel", "4"}, runner.commands[1].Args)
	assert.Equal(t, []string{"--install", cfg.BuildDir, "--config", "Release"}, runner.commands[2].Args)
}

func TestCMakeVisualStudio(t *testing.T) {
	runner := &recordingRunner{}
	cfg := linuxConfig(t, runner)
	cfg.Settings = core.Settings{
		OS:        core.OSWindows,
		Arch:      "x86_64",
		Compiler:  core.Compiler{Name: core.CompilerVisualStudio, Version: "16", Runtime: "MTd"},
		BuildType: core.BuildTypeDebug,
	}
	cfg.Jobs = 0

	bs, err := New(core.BuildSystemCMake, cfg)
	require.NoError(t, err)
	require.NoError(t, bs.Configure(context.Background(), nil))
	require.NoError(t, bs.Build(context.Background()))

	args := runner.commands[0].Args
	assert.Contains(t, args, "-A")
	assert.Contains(t, args, "x64")
	assert.Contains(t, args, "-DCMAKE_MSVC_RUNTIME_LIBRARY=MultiThreadedDebug")
	assert.Equal(t, []string{"--build", cfg.BuildDir, "--config", "Debug"}, runner.commands[1].Args)
}

func TestAutotoolsCommands(t *testing.T) {
	runner := &recordingRunner{}
	cfg := linuxConfig(t, runner)
	cfg.Settings.BuildType = core.BuildTypeDebug

	bs, err := New(core.BuildSystemAutotools, cfg)
	require.NoError(t, err)
	assert.Equal(t, "autotools", bs.Name())

	ctx := context.Background()
	require.NoError(t, bs.Configure(ctx, map[string]string{
		"BUILD_SHARED_LIBS":               "ON",
		"CMAKE_POSITION_INDEPENDENT_CODE": "ON",
		"FT_WITH_ZLIB":                    "OFF",
		"FT_WITH_BZIP2":                   "ON",
		"FT_WITH_PNG":                     "ON",
		"FT_WITH_HARFBUZZ":                "OFF",
	}))
	require.NoError(t, bs.Build(ctx))
	require.NoError(t, bs.Install(ctx))
	require.Len(t, runner.commands, 3)

	configure := runner.commands[0]
	assert.Equal(t, filepath.Join(cfg.SourceDir, "configure"), configure.Name)
	assert.Equal(t, cfg.BuildDir, configure.Dir)
	assert.Equal(t, []string{
		"--prefix=" + cfg.InstallDir,
		"--enable-shared", "--disable-static",
		"--with-pic",
		"--with-zlib=no",
		"--with-bzip2=yes",
		"--with-png=yes",
		"--with-harfbuzz=no",
	}, configure.Args)
	assert.Equal(t, []string{"CFLAGS=-g -O0"}, configure.Env)

	assert.Equal(t, Command{Dir: cfg.BuildDir, Name: "make", Args: []string{"-j2"}}, runner.commands[1])
	assert.Equal(t, Command{Dir: cfg.BuildDir, Name: "make", Args: []string{"install"}}, runner.commands[2])
}

func TestAutotoolsStatic(t *testing.T) {
	runner := &recordingRunner{}
	bs, err := New(core.BuildSystemAutotools, linuxConfig(t, runner))
	require.NoError(t, err)

	require.NoError(t, bs.Configure(context.Background(), map[string]string{"BUILD_SHARED_LIBS": "OFF"}))
	args := runner.commands[0].Args
	assert.Contains(t, args, "--disable-shared")
	assert.NotContains(t, args, "--with-pic")
	assert.Nil(t, runner.commands[0].Env)
}

func TestAutotoolsWindowsUnsupported(t *testing.T) {
	cfg := linuxConfig(t, &recordingRunner{})
	cfg.Settings.OS = core.OSWindows

	_, err := New(core.BuildSystemAutotools, cfg)
	assert.ErrorIs(t, err, core.ErrUnsupportedPlatform)
}

func TestUnknownBuildSystem(t *testing.T) {
	_, err := New("meson", linuxConfig(t, &recordingRunner{}))
	assert.Error(t, err)
}

func TestRunnerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	bs, err := New(core.BuildSystemCMake, linuxConfig(t, &recordingRunner{err: boom}))
	require.NoError(t, err)

	assert.ErrorIs(t, bs.Build(context.Background()), boom)
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "make", Args: []string{"-j2"}}
	assert.Equal(t, "make -j2", cmd.String())
}
