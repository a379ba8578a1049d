// This file is part of Vantage.
//
// Vantage is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Vantage is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Vantage.  If not, see <https://www.gnu.org/licenses/>.

// Package memory implements the memory management portion of the guest
// kernel ABI. Guest programs request "direct" (physically backed) and
// "flexible" (virtually backed) memory through syscall-like entry points on
// the Memory type.
//
// The PhysicalMemory manager tracks allocated blocks within a fixed-size
// physical backing space and the guest virtual range each block is currently
// mapped to. The FlexibleMemory manager tracks virtual-only mappings. Both
// are bookkeeping structures: no guest data lives here, only address ranges
// and their attributes.
//
// Host address ranges that stand in for guest virtual memory are obtained
// from a hostmem.Reserver, and GPU-visible mappings are coordinated with a
// GPUTracker, both injected at construction. Collaborators are always called
// outside the managers' locks.
//
// Recoverable errors are curated errors over the exported patterns
// (InvalidArgument, OutOfMemory, TryAgain, Busy, AccessDenied) and can be
// converted to the guest status word with Errno(). Violations of the guest
// ABI contract, such as an unknown protection code or the release of an
// untracked range, are not recoverable: they panic with an Abort value
// because continuing would operate on inconsistent bookkeeping.
package memory
