package transport

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Sample</title>
  <link>https://example.com</link>
  <item>
    <title>Volunteers rebuild park</title>
    <link>https://example.com/a</link>
    <description><![CDATA[<p>Neighbors helped.</p><img data-src="https://img.example.com/lazy.jpg"><img src="https://img.example.com/a.jpg">]]></description>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  </item>
  <item>
    <title>No date here</title>
    <link>https://example.com/b</link>
    <description>plain text</description>
  </item>
  <item>
    <title>Missing link is dropped</title>
    <description>nothing</description>
  </item>
  <item>
    <title>Thumbnail</title>
    <link>https://example.com/c</link>
    <media:thumbnail url="https://img.example.com/thumb.jpg"/>
    <pubDate>Tue, 03 Jan 2006 15:04:05 GMT</pubDate>
  </item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom sample</title>
  <entry>
    <title>Atom entry</title>
    <link href="https://example.com/atom/1"/>
    <id>urn:uuid:1</id>
    <updated>2024-03-01T10:00:00Z</updated>
    <summary>Atom summary</summary>
  </entry>
</feed>`
