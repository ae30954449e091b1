package scrape

import "testing"

func TestCollectImagesDedupesAndFilters(t *testing.T) {
	html := `
<img src="/photos/a.jpg">
<img data-src="/photos/b.jpg">
<img data-lazy-src="/photos/a.jpg">
<img src="https://cdn.vendor.example.com/photos/c.webp?w=800">
<img src="/assets/site-logo.png">
<img src="/assets/carfax-badge.jpg">
<img src="//static.vendor.example.com/photos/d.png">`

	images := CollectImages(html, "https://vendor.example.com/inventory/1", 15)

	want := []string{
		"https://vendor.example.com/photos/a.jpg",
		"https://vendor.example.com/photos/b.jpg",
		"https://cdn.vendor.example.com/photos/c.webp?w=800",
		"https://static.vendor.example.com/photos/d.png",
	}
	if len(images) != len(want) {
		t.Fatalf("got %d images %v, want %d", len(images), images, len(want))
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("images[%d] = %q, want %q", i, images[i], want[i])
		}
	}
}

func TestCollectImagesCaps(t *testing.T) {
	var html string
	for i := 0; i < 30; i++ {
		html += `<img src="/photos/p` + string(rune('a'+i%26)) + `-` + string(rune('0'+i/26)) + `.jpg">`
	}

	images := CollectImages(html, "https://vendor.example.com/inventory/1", 15)
	if len(images) != 15 {
		t.Errorf("cap not enforced, got %d images", len(images))
	}
}
