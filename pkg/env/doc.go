// pkg/env/doc.go
package env

/*
Package env deals with the process environment and library files around a
native build.

It handles:
  - Temporarily overriding environment variables (search paths such as
    PKG_CONFIG_PATH) for the duration of a build step, restoring the
    previous values on every exit path
  - Collecting the link names of the libraries a package installed
  - Checking that installed static libraries are well formed ar archives

Basic Usage:

    restore, err := env.Override(map[string]string{
        "PKG_CONFIG_PATH": env.SearchPath("PKG_CONFIG_PATH", dirs...),
    })
    if err != nil {
        return err
    }
    defer restore()

    libs, err := env.CollectLibs(filepath.Join(pkgDir, "lib"))
    // libs == []string{"freetype"}
*/
