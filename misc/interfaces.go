// The MIT License (MIT)
//
// Copyright (c) 2018 Mervin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package misc

// Lifecycle is implemented by components with an explicit start/stop/running contract:
// servers, clients, acceptors, schedulers and registries all embed it.
type Lifecycle interface {

	// Start starts the component. Returns an error if the component is mis-configured
	// or already running in a state that forbids a restart.
	Start() error

	// Stop stops the component. Safe to call on a component that is not running.
	Stop()

	// IsRunning reports whether the component is currently running.
	IsRunning() bool
}

// Sync is implemented by components that can block the caller until the component
// has finished whatever it is doing (a goroutine join, a drained shutdown, etc).
type Sync interface {
	Sync()
}

// Close is implemented by components that hold a resource that must be released.
type Close interface {
	Close()
}

// Type is implemented by components that come in more than one concrete flavor and
// want to report which one they are (e.g. a Registry backed by Redis vs. another store).
type Type interface {
	Type() string
}
