// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package measure runs similarity measurements of a query against the
// sentence corpus.
//
// A Service accepts one measurement at a time. A request made while another
// is in flight is rejected with core.ErrBusy; it is never queued and the
// in-flight run is never cancelled. Each run strips negated clauses from the
// query, extracts RAKE keywords, selects candidate sentences by keyword
// match (falling back to the whole corpus), scores them with the provider's
// Scorer and blends both signals with ranking.Combine.
//
// Progress is reported to an Observer:
//
//	accepted:  MeasureBegin, then exactly one of MeasureSuccess or MeasureFail
//	rejected:  MeasureFail only
//
// Events are delivered on the goroutine performing the transition. The busy
// flag is cleared before the terminal event, so an Observer may start the
// next measurement from inside MeasureSuccess or MeasureFail.
package measure
