package cmp

import (
	"encoding/json"
	"fmt"
)

// Well-known names on the vendor side of the browser bridge.
const (
	// loaderElementID marks the injected vendor loader script tag; its
	// presence makes re-injection a no-op.
	loaderElementID = "cmp-vendor-loader"
	// vendorUIObject is the global object the vendor script installs.
	vendorUIObject = "UC_UI"
	// vendorReadyEvent fires on the window when the vendor UI is usable.
	vendorReadyEvent = "UC_UI_INITIALIZED"
	// vendorViewChangedEvent fires on every vendor UI view transition.
	vendorViewChangedEvent = "UC_UI_VIEW_CHANGED"
	// bridgeBinding is the CDP binding the glue script reports through.
	bridgeBinding = "__cmpNotify"
)

// loaderScriptJS returns a snippet that injects the vendor loader script
// tag exactly once. A second evaluation finds the element by id and does
// nothing, which keeps initialization idempotent at the document level.
func loaderScriptJS(loaderURL, settingsID string, language string) string {
	return fmt.Sprintf(`(function() {
  if (document.getElementById(%q)) return;
  var s = document.createElement('script');
  s.id = %q;
  s.src = %q;
  s.async = true;
  s.setAttribute('data-settings-id', %q);
  if (%q) s.setAttribute('data-language', %q);
  (document.head || document.documentElement).appendChild(s);
})()`, loaderElementID, loaderElementID, loaderURL, settingsID, language, language)
}

// glueScriptJS returns the glue snippet bridging vendor events to the CDP
// binding. It signals "ready" immediately when the vendor object already
// exists (or on its ready event otherwise), and on every view change it
// fetches the per-service info and forwards it as a serialized
// [{id, name, consent:{status}}] payload. It also installs a collect
// function so the backend can request a resynchronization on demand.
func glueScriptJS() string {
	return fmt.Sprintf(`(function() {
  if (window.__cmpGlueInstalled) return;
  window.__cmpGlueInstalled = true;

  function notify(type, payload) {
    if (typeof window[%q] !== 'function') return;
    window[%q](JSON.stringify({type: type, payload: payload}));
  }

  function collect() {
    try {
      var ui = window[%q];
      if (!ui || typeof ui.getServicesBaseInfo !== 'function') return;
      var services = ui.getServicesBaseInfo().map(function(svc) {
        return {id: svc.id, name: svc.name, consent: {status: !!(svc.consent && svc.consent.status)}};
      });
      notify('consents', services);
    } catch (e) {
      notify('error', String(e));
    }
  }

  window.__cmpCollect = collect;

  if (window[%q]) {
    notify('ready', null);
    collect();
  } else {
    window.addEventListener(%q, function() {
      notify('ready', null);
      collect();
    });
  }
  window.addEventListener(%q, collect);
})()`, bridgeBinding, bridgeBinding, vendorUIObject, vendorUIObject, vendorReadyEvent, vendorViewChangedEvent)
}

// commandScriptJS returns a snippet that injects a single-use script
// fragment invoking the named vendor method with the given arguments and
// removes the fragment immediately. Fire-and-forget: no return value is
// read, state updates arrive asynchronously through the glue bridge.
func commandScriptJS(method string, args ...any) (string, error) {
	encoded := make([]byte, 0, 64)
	for i, a := range args {
		arg, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode argument %d for %s: %w", i, method, err)
		}
		if i > 0 {
			encoded = append(encoded, ',')
		}
		encoded = append(encoded, arg...)
	}

	call, err := json.Marshal(fmt.Sprintf(
		"try { var ui = window[%q]; if (ui && typeof ui[%q] === 'function') ui[%q](%s); } catch (e) { console.warn('cmp command failed', e); }",
		vendorUIObject, method, method, encoded,
	))
	if err != nil {
		return "", fmt.Errorf("encode command for %s: %w", method, err)
	}

	return fmt.Sprintf(`(function() {
  var s = document.createElement('script');
  s.text = %s;
  (document.head || document.documentElement).appendChild(s);
  s.remove();
})()`, call), nil
}

// collectScriptJS asks the glue script to re-fetch and re-dispatch the
// current per-service info.
func collectScriptJS() string {
	return `(function() { if (window.__cmpCollect) window.__cmpCollect(); })()`
}
