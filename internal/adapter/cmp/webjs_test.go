package cmp

import (
	"strings"
	"testing"
)

func TestLoaderScriptIsIdempotentByElementID(t *testing.T) {
	js := loaderScriptJS("https://cmp.example/loader.js", "settings-123", "de")

	if !strings.Contains(js, `document.getElementById("`+loaderElementID+`")`) {
		t.Error("loader must check for the existing element before injecting")
	}
	if !strings.Contains(js, `"https://cmp.example/loader.js"`) {
		t.Error("loader URL missing from snippet")
	}
	if !strings.Contains(js, `'data-settings-id', "settings-123"`) {
		t.Error("settings id attribute missing")
	}
	if !strings.Contains(js, `'data-language', "de"`) {
		t.Error("language attribute missing")
	}
}

func TestGlueScriptBridgesVendorEvents(t *testing.T) {
	js := glueScriptJS()

	for _, want := range []string{bridgeBinding, vendorUIObject, vendorReadyEvent, vendorViewChangedEvent, "getServicesBaseInfo"} {
		if !strings.Contains(js, want) {
			t.Errorf("glue script missing %q", want)
		}
	}
	if !strings.Contains(js, "window.__cmpGlueInstalled") {
		t.Error("glue script must be install-once")
	}
	if !strings.Contains(js, "window.__cmpCollect") {
		t.Error("glue script must install the collect hook")
	}
}

func TestCommandScriptEncodesArguments(t *testing.T) {
	js, err := commandScriptJS("saveDecisions", []map[string]any{{"serviceId": "a", "status": true}})
	if err != nil {
		t.Fatalf("commandScriptJS: %v", err)
	}
	if !strings.Contains(js, "saveDecisions") {
		t.Error("method name missing")
	}
	if !strings.Contains(js, `serviceId`) {
		t.Error("argument payload missing")
	}
	if !strings.Contains(js, "s.remove()") {
		t.Error("command fragment must remove itself")
	}
}

func TestCommandScriptNoArgs(t *testing.T) {
	js, err := commandScriptJS("acceptAllConsents")
	if err != nil {
		t.Fatalf("commandScriptJS: %v", err)
	}
	if !strings.Contains(js, "acceptAllConsents") {
		t.Error("method name missing")
	}
}

func TestCommandScriptRejectsUnencodableArgs(t *testing.T) {
	if _, err := commandScriptJS("m", make(chan int)); err == nil {
		t.Fatal("unencodable argument must fail")
	}
}

func TestCollectScriptCallsHook(t *testing.T) {
	if !strings.Contains(collectScriptJS(), "window.__cmpCollect") {
		t.Error("collect script must invoke the glue hook")
	}
}
