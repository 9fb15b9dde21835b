// Package submodule materializes git submodules as partial clones: bulk
// cloning from .gitmodules, adding a single new submodule, and moving
// sparse-checkout patterns between .gitmodules and the live sub-repositories.
//
// All mutations go through gitcmd so dry-run and verbose semantics apply
// uniformly. .gitmodules is never written directly; updates go through
// git config -f.
package submodule
