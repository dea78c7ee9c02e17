// Package dotfile implements the filesystem side of the installer: copying
// preset files into place, backing up shell configuration files and
// rewriting the ZSH_THEME assignment inside the run-control file.
//
// Every operation works on explicit paths; nothing here knows about themes
// or where the home directory is.
package dotfile
